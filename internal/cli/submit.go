package cli

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"appstore-submit/internal/app"
)

type submitOptions struct {
	ProjectPath    string
	BundleID       string
	DryRun         bool
	ReleaseNotes   string
	MaxWaitMinutes int
	KeyID          string
	IssuerID       string
	KeyPath        string
	BaseURL        string
}

func addSubmitFlags(cmd *cobra.Command, opts *submitOptions) {
	cmd.Flags().StringVar(&opts.ProjectPath, "project-path", ".", "Project directory containing the ios/ Xcode project")
	cmd.Flags().StringVar(&opts.BundleID, "bundle-id", "", "Bundle identifier (overrides project detection)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview the run without mutating remote state")
	cmd.Flags().StringVar(&opts.ReleaseNotes, "release-notes", app.DefaultReleaseNotes, "Whats-new text applied to every localization")
	cmd.Flags().IntVar(&opts.MaxWaitMinutes, "max-wait", 60, "Maximum minutes to wait for build processing")
	cmd.Flags().StringVar(&opts.KeyID, "key-id", "", "App Store Connect API key ID")
	cmd.Flags().StringVar(&opts.IssuerID, "issuer-id", "", "App Store Connect issuer ID")
	cmd.Flags().StringVar(&opts.KeyPath, "key-path", "", "Path to the .p8 private key (defaults to ~/.appstoreconnect/private_keys/AuthKey_<KEYID>.p8)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "API base URL override")
	_ = viper.BindPFlag("project_path", cmd.Flags().Lookup("project-path"))
	_ = viper.BindPFlag("bundle_id", cmd.Flags().Lookup("bundle-id"))
	_ = viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("release_notes", cmd.Flags().Lookup("release-notes"))
	_ = viper.BindPFlag("max_wait", cmd.Flags().Lookup("max-wait"))
	_ = viper.BindPFlag("api_key_id", cmd.Flags().Lookup("key-id"))
	_ = viper.BindPFlag("issuer_id", cmd.Flags().Lookup("issuer-id"))
	_ = viper.BindPFlag("p8_key_path", cmd.Flags().Lookup("key-path"))
	_ = viper.BindPFlag("base_url", cmd.Flags().Lookup("base-url"))
}

func runSubmit(cmd *cobra.Command, versionArg string, opts submitOptions) error {
	ctx := log.Logger.WithContext(cmd.Context())
	req := app.SubmitRequest{
		Version:        versionArg,
		ProjectPath:    resolveString(cmd, opts.ProjectPath, "project_path", "project-path"),
		BundleID:       resolveString(cmd, opts.BundleID, "bundle_id", "bundle-id"),
		DryRun:         resolveBool(cmd, opts.DryRun, "dry_run", "dry-run"),
		ReleaseNotes:   resolveString(cmd, opts.ReleaseNotes, "release_notes", "release-notes"),
		MaxWaitMinutes: resolveInt(cmd, opts.MaxWaitMinutes, "max_wait", "max-wait"),
		KeyID:          resolveString(cmd, opts.KeyID, "api_key_id", "key-id"),
		IssuerID:       resolveString(cmd, opts.IssuerID, "issuer_id", "issuer-id"),
		KeyPath:        resolveString(cmd, opts.KeyPath, "p8_key_path", "key-path"),
		BaseURL:        resolveString(cmd, opts.BaseURL, "base_url", "base-url"),
	}
	if err := checkCredentials(req); err != nil {
		return err
	}
	if req.ProjectPath == "" {
		req.ProjectPath = "."
	}

	service := newAppService()
	result, err := service.Submit(ctx, req)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func newAppService() app.Service {
	return app.NewService()
}

// checkCredentials fails fast with remediation guidance before any
// network call. The key ids live in App Store Connect under Users and
// Access > Keys.
func checkCredentials(req app.SubmitRequest) error {
	var missing []string
	if strings.TrimSpace(req.KeyID) == "" {
		missing = append(missing, "APP_STORE_API_KEY_ID")
	}
	if strings.TrimSpace(req.IssuerID) == "" {
		missing = append(missing, "APP_STORE_ISSUER_ID")
	}
	if len(missing) > 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("missing credentials: set %s (App Store Connect > Users and Access > Keys)", strings.Join(missing, ", ")))
	}
	return nil
}

func printResult(result app.SubmitResult) {
	switch {
	case result.DryRun:
		fmt.Println("dry run complete: no changes were made")
	case result.AlreadySubmitted:
		fmt.Printf("version %s already in state %s: nothing to submit\n", result.Version, result.State)
	case result.Submitted:
		fmt.Printf("submitted %s for review (%s, %d/%d localizations updated)\n",
			result.Version, result.AppName, result.NotesUpdated, result.NotesTotal)
	case result.ManualAction:
		fmt.Printf("version %s prepared, but submission needs manual completion in App Store Connect\n", result.Version)
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
