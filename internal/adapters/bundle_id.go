package adapters

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
)

// BundleIDAdapter scans an Xcode project descriptor for the product
// bundle identifier. The pbxproj file is treated as plain text, not
// parsed as a plist.
type BundleIDAdapter struct{}

func NewBundleIDAdapter() BundleIDAdapter {
	return BundleIDAdapter{}
}

var (
	bundleIDPattern = regexp.MustCompile(`PRODUCT_BUNDLE_IDENTIFIER\s*=\s*([^;]+);`)
	// Fallback for build settings that reference a variable: find a
	// concrete dotted identifier elsewhere in the file.
	bundleIDLiteral = regexp.MustCompile(`PRODUCT_BUNDLE_IDENTIFIER\s*=\s*"?([a-z0-9.\-]+)"?;`)
)

func (a BundleIDAdapter) Detect(projectPath string) (string, error) {
	iosDir := filepath.Join(projectPath, "ios")
	if _, err := os.Stat(iosDir); err != nil {
		// Nested layouts keep ios/ beside the project directory.
		iosDir = filepath.Join(filepath.Dir(strings.TrimRight(projectPath, "/")), "ios")
	}
	pbxproj, err := findPbxproj(iosDir)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(pbxproj)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read project file").
			WithCause(err)
	}
	match := bundleIDPattern.FindSubmatch(content)
	if match == nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("bundle identifier not found in project file: pass --bundle-id")
	}
	bundleID := strings.Trim(strings.TrimSpace(string(match[1])), `"`)
	if strings.HasPrefix(bundleID, "$(") {
		literal := bundleIDLiteral.FindSubmatch(content)
		if literal == nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("bundle identifier is a variable reference: pass --bundle-id")
		}
		bundleID = string(literal[1])
	}
	log.Debug().Str("file", pbxproj).Str("bundle_id", bundleID).Msg("bundle id detected")
	return bundleID, nil
}

func findPbxproj(root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || found != "" {
			return nil
		}
		if entry.Name() == "project.pbxproj" {
			found = path
		}
		return nil
	})
	if err != nil || found == "" {
		builder := errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("project.pbxproj not found: pass --project-path or --bundle-id")
		if err != nil {
			builder = builder.WithCause(err)
		}
		return "", builder
	}
	return found, nil
}

var _ ports.BundleIDPort = BundleIDAdapter{}
