package app

import "appstore-submit/internal/types"

type SubmitRequest struct {
	// Version is the raw version[+build] argument.
	Version        string
	ProjectPath    string
	BundleID       string
	ReleaseNotes   string
	MaxWaitMinutes int
	DryRun         bool

	KeyID         string
	IssuerID      string
	KeyPath       string
	BaseURL       string
	TimeoutSec    int
	Retries       int
	RetryDelaySec int
}

type SubmitResult struct {
	BundleID    string
	AppID       string
	AppName     string
	Version     string
	BuildNumber string
	BuildID     string
	VersionID   string

	State            types.AppStoreState
	AlreadySubmitted bool

	NotesUpdated int
	NotesTotal   int

	SubmissionPath types.SubmissionPath
	Submitted      bool
	ManualAction   bool
	DryRun         bool
}
