package cli_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/cli"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("")
	gt.A(t, cfg.Collections).Length(1)
	gt.V(t, cfg.Collections[0].Name).Equal("risks")
	gt.A(t, cfg.Collections[0].Indexes).Length(2)
	gt.V(t, cfg.Collections[0].Indexes[1].Fields[1].Path).Equal("department")

	prefixed := cli.GetIndexConfig("staging")
	gt.V(t, prefixed.Collections[0].Name).Equal("staging_risks")
}
