package course

import "github.com/trezcool/kazi/core"

// Course is a catalog entry; groups and tasks reference courses by label.
type Course struct {
	ID   int    `json:"id"`
	Name string `json:"course"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name string `json:"course" validate:"required"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}
