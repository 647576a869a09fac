package ports

// BundleIDPort locates the application bundle identifier from a local
// project checkout.
type BundleIDPort interface {
	Detect(projectPath string) (string, error)
}
