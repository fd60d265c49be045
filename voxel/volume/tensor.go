package volume

import (
	"fmt"

	"github.com/gekko3d/terrastream/voxel/block"
)

// Tensor2 is a dense 2D grid of int32 values, indexed (x, z).
type Tensor2 struct {
	Shape  [2]int
	Stride [2]int
	Data   []int32
}

func NewTensor2(x, z int) *Tensor2 {
	return &Tensor2{
		Shape:  [2]int{x, z},
		Stride: [2]int{z, 1},
		Data:   make([]int32, x*z),
	}
}

func (t *Tensor2) Index(x, z int) int {
	return x*t.Stride[0] + z*t.Stride[1]
}

func (t *Tensor2) Get(x, z int) int32 {
	return t.Data[t.Index(x, z)]
}

func (t *Tensor2) Set(x, z int, v int32) {
	t.Data[t.Index(x, z)] = v
}

// Tensor3 stores blocks with y as the fastest-moving axis, so that a single
// column is contiguous in Data. Indexed (x, y, z).
type Tensor3 struct {
	Shape  [3]int
	Stride [3]int
	Data   []block.ID
}

func NewTensor3(x, y, z int) *Tensor3 {
	return &Tensor3{
		Shape:  [3]int{x, y, z},
		Stride: [3]int{y * z, 1, y},
		Data:   make([]block.ID, x*y*z),
	}
}

func (t *Tensor3) Index(x, y, z int) int {
	return x*t.Stride[0] + y*t.Stride[1] + z*t.Stride[2]
}

func (t *Tensor3) Get(x, y, z int) block.ID {
	return t.Data[t.Index(x, y, z)]
}

func (t *Tensor3) Set(x, y, z int, v block.ID) {
	t.Data[t.Index(x, y, z)] = v
}

// Column returns the contiguous y-slice at (x, z). The slice aliases Data.
func (t *Tensor3) Column(x, z int) []block.ID {
	start := t.Index(x, 0, z)
	return t.Data[start : start+t.Shape[1]]
}

// FillColumn writes v into [start, start+count) of column (x, z).
func (t *Tensor3) FillColumn(x, z, start, count int, v block.ID) {
	if start < 0 || count < 0 || start+count > t.Shape[1] {
		panic(fmt.Sprintf("FillColumn: range [%d, %d) outside height %d", start, start+count, t.Shape[1]))
	}
	col := t.Column(x, z)[start : start+count]
	for i := range col {
		col[i] = v
	}
}
