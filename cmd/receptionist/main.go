// Command receptionist drives the Smart-Receptionist navigation core from
// the terminal: an administrator analyzes a blueprint image into the shared
// layout store, and users ask free-text navigation questions against it.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AkashRaja123/Smart-Receptionist/internal/config"
	"github.com/AkashRaja123/Smart-Receptionist/internal/interpreter"
	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
	"github.com/AkashRaja123/Smart-Receptionist/internal/logging"
	"github.com/AkashRaja123/Smart-Receptionist/internal/oracle"
	"github.com/AkashRaja123/Smart-Receptionist/internal/resolver"
	"github.com/AkashRaja123/Smart-Receptionist/internal/session"
	"github.com/AkashRaja123/Smart-Receptionist/internal/store"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	workspace   string
	domainFlag  string
	roleFlag    string
	userFlag    string
	institution string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "receptionist",
	Short: "SmartReceptionist - AI blueprint navigation assistant",
	Long: `SmartReceptionist converts a building blueprint image into a structured
floor/room graph with access rules, then answers free-text navigation
questions with role-filtered multi-hop paths through that graph.

The generative oracle performs the vision and language work; this tool owns
validation, normalization, access policy, and the shared layout store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, _ = os.Getwd()
		}
		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <blueprint-image>",
	Short: "Analyze a blueprint image and install it as the active layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		domain, err := parseDomain(domainFlag)
		if err != nil {
			return err
		}

		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read blueprint image: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		client := newOracleClient()
		logger.Info("Analyzing blueprint",
			zap.String("image", args[0]),
			zap.String("domain", string(domain)),
			zap.String("institution", name))

		l, err := interpreter.New(client).AnalyzeBlueprint(cmd.Context(), image, mimeTypeFor(args[0]), domain, name)
		if err != nil {
			logger.Error("blueprint analysis failed", zap.Error(err))
			return errors.New(interpreter.UserMessage)
		}

		if err := st.SetLayout(l); err != nil {
			return err
		}

		fmt.Printf("Installed layout for %q (%s)\n", l.BuildingName, l.BuildingType)
		fmt.Printf("  floors: %d  rooms: %d  access rules: %d\n", len(l.Floors), l.RoomCount(), len(l.AccessRules))
		if l.PredictedBlockType != "" {
			fmt.Printf("  predicted block type: %s\n", l.PredictedBlockType)
		}
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a navigation question against the active layout",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		role, err := parseRole(roleFlag)
		if err != nil {
			return err
		}
		domain, err := parseDomain(domainFlag)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := session.Login(st, domain, role, userFlag, institution); err != nil {
			return err
		}
		defer session.Logout(st)

		l := st.GetLayout()
		if l == nil {
			return session.ErrNoLayout
		}

		query := strings.Join(args, " ")
		answer, err := resolver.New(newOracleClient()).Resolve(cmd.Context(), query, l, role)
		if err != nil {
			return fmt.Errorf("navigation query failed: %w", err)
		}

		fmt.Println(answer.Text)
		if len(answer.Path) > 0 {
			fmt.Printf("\nPath: %s\n", strings.Join(answer.Path, " -> "))
		}
		for _, step := range answer.Instructions {
			fmt.Printf("  %s\n", step)
		}
		if !answer.IsReached {
			fmt.Println("\n(Destination not reached.)")
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check whether a role/institution combination can sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRole(roleFlag)
		if err != nil {
			return err
		}
		domain, err := parseDomain(domainFlag)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, err := session.Login(st, domain, role, userFlag, institution)
		if err != nil {
			return err
		}
		fmt.Printf("Login allowed: %s %q at %q\n", sess.Role, sess.Username, sess.InstitutionName)
		return nil
	},
}

func openStore() (*store.Store, error) {
	st, err := store.New(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Watch {
		if err := st.Watch(); err != nil {
			logger.Warn("layout change watcher unavailable", zap.Error(err))
		}
	}
	return st, nil
}

func newOracleClient() *oracle.GeminiClient {
	oc := oracle.DefaultGeminiConfig(cfg.LLM.APIKey)
	if cfg.LLM.Model != "" {
		oc.Model = cfg.LLM.Model
	}
	if cfg.LLM.BaseURL != "" {
		oc.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.Temperature > 0 {
		oc.Temperature = cfg.LLM.Temperature
	}
	if d, err := cfg.LLMTimeout(); err == nil {
		oc.Timeout = d
	}
	return oracle.NewGeminiClientWithConfig(oc)
}

func parseDomain(s string) (layout.DomainType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hospital":
		return layout.DomainHospital, nil
	case "educational", "education", "school", "university":
		return layout.DomainEducational, nil
	default:
		return "", fmt.Errorf("unknown domain %q (hospital or educational)", s)
	}
}

func parseRole(s string) (layout.RoleType, error) {
	for _, r := range []layout.RoleType{
		layout.RoleAdmin, layout.RoleVisitor, layout.RoleDoctor,
		layout.RolePatient, layout.RoleStaff, layout.RoleStudent,
	} {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "receptionist.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "workspace directory (default: cwd)")
	rootCmd.PersistentFlags().StringVar(&domainFlag, "domain", "hospital", "institution domain (hospital or educational)")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "Visitor", "user role (Admin, Visitor, Doctor, Patient, Staff, Student)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "guest", "username")
	rootCmd.PersistentFlags().StringVar(&institution, "institution", "", "institution name")

	analyzeCmd.Flags().String("name", "", "institution name for the blueprint")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(loginCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
