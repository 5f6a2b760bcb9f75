package provision

import "fmt"

// ProvisionError reports that the dataset could not be obtained from a
// remote source: transport failure, non-success status, or a payload that is
// not a complete FeatureCollection.
type ProvisionError struct {
	URL string
	Err error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision: fetch %s: %v", e.URL, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// StorageError reports that the dataset could not be written to, or checked
// at, the local cache path.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("provision: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
