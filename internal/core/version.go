package core

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ReleaseTarget is the parsed form of the version argument. BuildNumber
// is empty when the caller did not pin a build ("1.13.0" vs "1.13.0+30").
type ReleaseTarget struct {
	Version     string
	BuildNumber string
}

// ParseReleaseTarget splits a version[+build] argument and validates the
// marketing version before any network call is made.
func ParseReleaseTarget(arg string) (ReleaseTarget, error) {
	trimmed := strings.TrimSpace(arg)
	if trimmed == "" {
		return ReleaseTarget{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("version argument is empty")
	}
	version := trimmed
	build := ""
	if idx := strings.Index(trimmed, "+"); idx >= 0 {
		version = trimmed[:idx]
		build = strings.TrimSpace(trimmed[idx+1:])
		if build == "" {
			return ReleaseTarget{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("build number after + is empty")
		}
	}
	if _, err := semver.NewVersion(version); err != nil {
		return ReleaseTarget{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("version string is not a valid version").
			WithCause(err)
	}
	return ReleaseTarget{Version: version, BuildNumber: build}, nil
}
