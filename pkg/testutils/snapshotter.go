package testutils

import (
	"encoding/json"
	"testing"

	"github.com/bradleyjkemp/cupaloy/v2"
)

type Snapshotter struct {
	config *cupaloy.Config
}

// NewSnapshotter stores snapshots under subdirectory. Missing snapshots are
// recorded on first run instead of failing the test.
func NewSnapshotter(subdirectory string) *Snapshotter {
	return &Snapshotter{
		config: cupaloy.New(
			cupaloy.SnapshotSubdirectory(subdirectory),
			cupaloy.FailOnUpdate(false),
		),
	}
}

func (s Snapshotter) SnapshotT(t *testing.T, i ...interface{}) {
	t.Helper()
	s.config.SnapshotT(t, i...)
}

func (s Snapshotter) SnapshotTJson(t *testing.T, i interface{}) {
	t.Helper()
	json, err := getJson(i)
	if err != nil {
		t.Fatal(err)
	}
	s.config.SnapshotT(t, json)
}

func getJson(data interface{}) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}
