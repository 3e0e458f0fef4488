package versions

import "fmt"

// DiscoveryError reports that the versions list or a version detail could not be obtained.
type DiscoveryError struct {
	Url string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("version discovery at %s: %v", e.Url, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
