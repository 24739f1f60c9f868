package model

import (
	"fmt"
	"strings"
)

// Archive paths are the keys under which metadata lives in a store backend.
// Layer records are JSON, label and commit records are YAML.

func getArchivePathToLayers() string {
	return fmt.Sprint("layers/")
}

// GetArchivePathToLayer yields the key of a layer record.
func GetArchivePathToLayer(layerID string) string {
	return fmt.Sprint(getArchivePathToLayers(), layerID, ".json")
}

func getArchivePathToLabels() string {
	return fmt.Sprint("labels/")
}

// GetArchivePathPrefixToLabels yields the key prefix under which labels are listed.
func GetArchivePathPrefixToLabels(prefixes ...string) string {
	return fmt.Sprint(getArchivePathToLabels(), strings.Join(prefixes, "/"))
}

// GetArchivePathToLabel yields the key of a label record.
func GetArchivePathToLabel(labelKey string) string {
	return fmt.Sprint(getArchivePathToLabels(), labelKey, ".yaml")
}

func getArchivePathToCommits() string {
	return fmt.Sprint("commits/")
}

// GetArchivePathToCommit yields the key of a commit metadata record.
func GetArchivePathToCommit(commitID string) string {
	return fmt.Sprint(getArchivePathToCommits(), commitID, ".yaml")
}
