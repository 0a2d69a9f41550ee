package plan

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes every top-level block a plan file may contain.
type fileRoot struct {
	Operations []*operationBlock `hcl:"operation,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

// operationBlock is the HCL shape of one operation. Optional numbers are
// pointers so that an omitted attribute can take its default.
type operationBlock struct {
	Name              string            `hcl:"name,label"`
	Work              string            `hcl:"work"`
	OwnEstimate       *float64          `hcl:"own_estimate,optional"`
	Contribution      *float64          `hcl:"contribution,optional"`
	Binding           string            `hcl:"binding,optional"`
	Group             string            `hcl:"group,optional"`
	ShowSubOperations *bool             `hcl:"show_sub_operations,optional"`
	Meta              *cty.Value        `hcl:"meta,optional"`
	Operations        []*operationBlock `hcl:"operation,block"`
	Body              hcl.Body          `hcl:",body"`
}
