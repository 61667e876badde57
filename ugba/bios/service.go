package bios

// Service is the set of BIOS math calls shared by both targets. On the console
// they are supervisor calls into the real BIOS, on a desktop host they run in
// software.
type Service interface {
	Div(num, den int32) int32
	DivMod(num, den int32) int32
	Sqrt(value uint32) uint16
	ArcTan(tan int16) int16
	ArcTan2(x, y int16) uint16
	Checksum() uint32
}

// Software implements Service with the emulated BIOS routines.
type Software struct{}

var _ Service = Software{}

func (Software) Div(num, den int32) int32    { return Div(num, den) }
func (Software) DivMod(num, den int32) int32 { return DivMod(num, den) }
func (Software) Sqrt(value uint32) uint16    { return Sqrt(value) }
func (Software) ArcTan(tan int16) int16      { return ArcTan(tan) }
func (Software) ArcTan2(x, y int16) uint16   { return ArcTan2(x, y) }
func (Software) Checksum() uint32            { return Checksum() }
