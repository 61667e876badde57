//go:build gameboyadvance

package bios

import "device/arm"

// Default is the BIOS service of the build target.
var Default Service = Hardware{}

// Hardware issues supervisor calls into the console BIOS. Only available when
// building for the console with TinyGo.
type Hardware struct{}

var _ Service = Hardware{}

func (Hardware) Div(num, den int32) int32 {
	if den == 0 {
		return 0
	}
	return int32(arm.AsmFull(`
		mov r0, {num}
		mov r1, {den}
		svc #0x06
		mov {}, r0
	`, map[string]interface{}{"num": num, "den": den}))
}

func (Hardware) DivMod(num, den int32) int32 {
	if den == 0 {
		return 0
	}
	return int32(arm.AsmFull(`
		mov r0, {num}
		mov r1, {den}
		svc #0x06
		mov {}, r1
	`, map[string]interface{}{"num": num, "den": den}))
}

func (Hardware) Sqrt(value uint32) uint16 {
	return uint16(arm.AsmFull(`
		mov r0, {value}
		svc #0x08
		mov {}, r0
	`, map[string]interface{}{"value": value}))
}

func (Hardware) ArcTan(tan int16) int16 {
	return int16(arm.AsmFull(`
		mov r0, {tan}
		svc #0x09
		mov {}, r0
	`, map[string]interface{}{"tan": int32(tan)}))
}

func (Hardware) ArcTan2(x, y int16) uint16 {
	return uint16(arm.AsmFull(`
		mov r0, {x}
		mov r1, {y}
		svc #0x0A
		mov {}, r0
	`, map[string]interface{}{"x": int32(x), "y": int32(y)}))
}

func (Hardware) Checksum() uint32 {
	return uint32(arm.AsmFull(`
		svc #0x0D
		mov {}, r0
	`, nil))
}
