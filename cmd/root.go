package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/gig-ranker/internal/github"
	"github.com/spigell/gig-ranker/internal/proposal"
	"github.com/spigell/gig-ranker/internal/scoring"
)

const (
	app = "gig-ranker"
)

type Config struct {
	GitHub  *GitHubConfig   `mapstructure:"github"`
	Tools   *ToolsConfig    `mapstructure:"tools"`
	Jobs    *JobsConfig     `mapstructure:"jobs"`
	Scoring *scoring.Config `mapstructure:"scoring"`
	AI      *AIConfig       `mapstructure:"ai"`
}

type GitHubConfig struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
	APIURL    string `mapstructure:"api-url"`
}

type ToolsConfig struct {
	// Source is either "github" or "file".
	Source     string               `mapstructure:"source"`
	File       string               `mapstructure:"file"`
	Search     *github.SearchParams `mapstructure:"search"`
	FlagTopics []string             `mapstructure:"flag-topics"`
	Weights    []float64            `mapstructure:"weights"`
	// ProfileWeights override Weights for the profile with the same name.
	ProfileWeights map[string][]float64 `mapstructure:"profile-weights"`
	Top            int                  `mapstructure:"top"`
	Export         string               `mapstructure:"export"`
}

type JobsConfig struct {
	File              string              `mapstructure:"file"`
	ExcludeFile       string              `mapstructure:"exclude-file"`
	ImmediateOnly     *bool               `mapstructure:"immediate-only"`
	ImmediateKeywords []string            `mapstructure:"immediate-keywords"`
	ExcludePlatforms  []string            `mapstructure:"exclude-platforms"`
	MinScore          int                 `mapstructure:"min-score"`
	RulesFile         string              `mapstructure:"rules-file"`
	Top               int                 `mapstructure:"top"`
	Applications      int                 `mapstructure:"applications"`
	Categories        []proposal.Category `mapstructure:"categories"`
	DefaultCategory   string              `mapstructure:"default-category"`
	Export            string              `mapstructure:"export"`
	ApplicationsFile  string              `mapstructure:"applications-export"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "gig-ranker ranks GitHub tools and freelance listings and drafts proposals for the best ones",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"github.token-file":      "GITHUB_TOKEN_FILE",
		"github.token":           "GITHUB_TOKEN",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is gig-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("metrics-file", "", "write run metrics to this file in the node_exporter textfile format")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("metrics-file", rootCmd.PersistentFlags().Lookup("metrics-file"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every command has usable defaults, so only an explicit or broken config is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.setDefaults()
	return config, nil
}

func (c *Config) setDefaults() {
	if c.GitHub == nil {
		c.GitHub = &GitHubConfig{}
	}

	if c.Tools == nil {
		c.Tools = &ToolsConfig{}
	}
	if c.Tools.Source == "" {
		c.Tools.Source = toolsSourceGitHub
	}
	if c.Tools.Search == nil {
		c.Tools.Search = &github.SearchParams{}
	}
	if c.Tools.Search.Query == "" {
		c.Tools.Search.Query = "automation"
	}
	if c.Tools.Search.PerPage == 0 {
		c.Tools.Search.PerPage = 8
	}

	if c.Jobs == nil {
		c.Jobs = &JobsConfig{}
	}
	if c.Jobs.Top <= 0 {
		c.Jobs.Top = 5
	}
	if c.Jobs.Applications <= 0 {
		c.Jobs.Applications = 3
	}
	if c.Jobs.Export == "" {
		c.Jobs.Export = "ai_jobs_live_results.csv"
	}
	if c.Jobs.ApplicationsFile == "" {
		c.Jobs.ApplicationsFile = "ai_job_applications_ready.csv"
	}

	if c.AI == nil {
		c.AI = &AIConfig{}
	}
}
