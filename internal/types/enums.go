package types

type ProcessingState string

const (
	ProcessingStateProcessing ProcessingState = "PROCESSING"
	ProcessingStateValid      ProcessingState = "VALID"
	ProcessingStateInvalid    ProcessingState = "INVALID"
	ProcessingStateUnknown    ProcessingState = "UNKNOWN"
)

type AppStoreState string

const (
	AppStoreStateWaitingForReview        AppStoreState = "WAITING_FOR_REVIEW"
	AppStoreStateInReview                AppStoreState = "IN_REVIEW"
	AppStoreStatePendingDeveloperRelease AppStoreState = "PENDING_DEVELOPER_RELEASE"
	AppStoreStateReadyForSale            AppStoreState = "READY_FOR_SALE"
)

// Submitted reports whether the state means the version is already under
// or past review, making it off-limits to further automated edits.
func (s AppStoreState) Submitted() bool {
	switch s {
	case AppStoreStateWaitingForReview,
		AppStoreStateInReview,
		AppStoreStatePendingDeveloperRelease,
		AppStoreStateReadyForSale:
		return true
	}
	return false
}

type Platform string

const PlatformIOS Platform = "IOS"

type SubmissionPath string

const (
	SubmissionPathNone   SubmissionPath = ""
	SubmissionPathReview SubmissionPath = "review"
	SubmissionPathLegacy SubmissionPath = "legacy"
)

// Resource type names used in request envelopes.
const (
	ResourceApps                  = "apps"
	ResourceBuilds                = "builds"
	ResourceAppStoreVersions      = "appStoreVersions"
	ResourceVersionLocalizations  = "appStoreVersionLocalizations"
	ResourceReviewSubmissions     = "reviewSubmissions"
	ResourceReviewSubmissionItems = "reviewSubmissionItems"
	ResourceVersionSubmissions    = "appStoreVersionSubmissions"
)
