package addr

// All I/O register constants are offsets from the start of the IO region.
// The bus address of a register is IO + offset.

// display registers
const (
	// DISPCNT is the display control register.
	//  - Bits 0-2: BG mode (0-5)
	//  - Bit 3: reserved (CGB mode)
	//  - Bit 4: display frame select (modes 4 and 5)
	//  - Bit 5: HBlank interval free
	//  - Bit 6: OBJ character VRAM mapping (0=2D, 1=1D)
	//  - Bit 7: forced blank
	//  - Bits 8-12: BG0-BG3 and OBJ enable
	//  - Bits 13-15: window 0, window 1, OBJ window enable
	DISPCNT uint32 = 0x000
	// DISPSTAT is the display status register.
	//  - Bit 0: VBlank flag (read only)
	//  - Bit 1: HBlank flag (read only)
	//  - Bit 2: V-counter match flag (read only)
	//  - Bits 3-5: VBlank, HBlank and V-counter IRQ enable
	//  - Bits 8-15: V-count setting (LYC)
	DISPSTAT uint32 = 0x004
	// VCOUNT is the current scanline (read only).
	VCOUNT uint32 = 0x006

	BG0CNT uint32 = 0x008
	BG1CNT uint32 = 0x00A
	BG2CNT uint32 = 0x00C
	BG3CNT uint32 = 0x00E

	BG0HOFS uint32 = 0x010
	BG0VOFS uint32 = 0x012
	BG1HOFS uint32 = 0x014
	BG1VOFS uint32 = 0x016
	BG2HOFS uint32 = 0x018
	BG2VOFS uint32 = 0x01A
	BG3HOFS uint32 = 0x01C
	BG3VOFS uint32 = 0x01E

	// Affine parameters of BG2: PA-PD are 8.8 fixed point, X and Y are 20.8
	// fixed point split in low and high halfwords (28 bits used).
	BG2PA  uint32 = 0x020
	BG2PB  uint32 = 0x022
	BG2PC  uint32 = 0x024
	BG2PD  uint32 = 0x026
	BG2X_L uint32 = 0x028
	BG2X_H uint32 = 0x02A
	BG2Y_L uint32 = 0x02C
	BG2Y_H uint32 = 0x02E

	BG3PA  uint32 = 0x030
	BG3PB  uint32 = 0x032
	BG3PC  uint32 = 0x034
	BG3PD  uint32 = 0x036
	BG3X_L uint32 = 0x038
	BG3X_H uint32 = 0x03A
	BG3Y_L uint32 = 0x03C
	BG3Y_H uint32 = 0x03E

	MOSAIC   uint32 = 0x04C
	BLDCNT   uint32 = 0x050
	BLDALPHA uint32 = 0x052
	BLDY     uint32 = 0x054
)

// BGCNT returns the control register offset of background n.
func BGCNT(n int) uint32 { return BG0CNT + uint32(n)*2 }

// BGHOFS returns the horizontal scroll register offset of background n.
func BGHOFS(n int) uint32 { return BG0HOFS + uint32(n)*4 }

// BGVOFS returns the vertical scroll register offset of background n.
func BGVOFS(n int) uint32 { return BG0VOFS + uint32(n)*4 }

// BGAffine returns the offset of the PA register of affine background n (2 or 3).
// PB, PC, PD, X and Y follow at +2, +4, +6, +8 and +12.
func BGAffine(n int) uint32 { return BG2PA + uint32(n-2)*0x10 }

// DMA registers, channel 0. The other channels follow with a 12 byte stride.
const (
	// DMA0SAD is the 32-bit source address.
	DMA0SAD uint32 = 0x0B0
	// DMA0DAD is the 32-bit destination address.
	DMA0DAD uint32 = 0x0B4
	// DMA0CNT_L is the 16-bit transfer count.
	DMA0CNT_L uint32 = 0x0B8
	// DMA0CNT_H is the control register.
	//  - Bits 5-6: destination control (0=increment, 1=decrement, 2=fixed, 3=increment/reload)
	//  - Bits 7-8: source control (0=increment, 1=decrement, 2=fixed)
	//  - Bit 9: repeat
	//  - Bit 10: transfer type (0=16 bit, 1=32 bit)
	//  - Bit 11: game pak DRQ (channel 3 only)
	//  - Bits 12-13: start timing (0=immediate, 1=VBlank, 2=HBlank, 3=special)
	//  - Bit 14: IRQ upon end of transfer
	//  - Bit 15: enable
	DMA0CNT_H uint32 = 0x0BA

	DMAStride = 12
)

// DMASAD returns the source address register offset of DMA channel n.
func DMASAD(n int) uint32 { return DMA0SAD + uint32(n)*DMAStride }

// DMADAD returns the destination address register offset of DMA channel n.
func DMADAD(n int) uint32 { return DMA0DAD + uint32(n)*DMAStride }

// DMACNTL returns the count register offset of DMA channel n.
func DMACNTL(n int) uint32 { return DMA0CNT_L + uint32(n)*DMAStride }

// DMACNTH returns the control register offset of DMA channel n.
func DMACNTH(n int) uint32 { return DMA0CNT_H + uint32(n)*DMAStride }

// timers
const (
	// TM0CNT_L reads the current counter, writes set the reload value.
	TM0CNT_L uint32 = 0x100
	// TM0CNT_H is the timer control register.
	//  - Bits 0-1: prescaler (0=F/1, 1=F/64, 2=F/256, 3=F/1024)
	//  - Bit 2: count-up timing (cascade from the previous timer)
	//  - Bit 6: IRQ on overflow
	//  - Bit 7: start/stop
	TM0CNT_H uint32 = 0x102

	TimerStride = 4
)

// TMCNTL returns the counter/reload register offset of timer n.
func TMCNTL(n int) uint32 { return TM0CNT_L + uint32(n)*TimerStride }

// TMCNTH returns the control register offset of timer n.
func TMCNTH(n int) uint32 { return TM0CNT_H + uint32(n)*TimerStride }

// serial
const (
	// SIOCNT is the serial control register (normal mode layout).
	//  - Bit 0: shift clock (0=external, 1=internal)
	//  - Bit 7: start bit, cleared by hardware when the transfer completes
	//  - Bit 12: transfer length (0=8 bit, 1=32 bit)
	//  - Bit 14: IRQ enable
	SIOCNT uint32 = 0x128
	// SIODATA8 holds the byte for 8-bit normal mode transfers.
	SIODATA8 uint32 = 0x12A
	// SIODATA32 holds the word for 32-bit normal mode transfers.
	SIODATA32 uint32 = 0x120
)

// keypad
const (
	// KEYINPUT holds the key status, 0=pressed (read only).
	KEYINPUT uint32 = 0x130
	// KEYCNT is the keypad interrupt control register.
	//  - Bits 0-9: keys that take part in the condition
	//  - Bit 14: IRQ enable
	//  - Bit 15: condition (0=logical OR, 1=logical AND)
	KEYCNT uint32 = 0x132
)

// interrupts and system control
const (
	// IE is the interrupt enable register.
	IE uint32 = 0x200
	// IF is the interrupt request register, writing 1 to a bit acknowledges it.
	IF uint32 = 0x202
	// WAITCNT is the game pak waitstate control register.
	WAITCNT uint32 = 0x204
	// IME is the interrupt master enable register.
	IME uint32 = 0x208
	// POSTFLG is set by the BIOS after the first boot.
	POSTFLG uint32 = 0x300
)

// Interrupt is an enum that represents one of the interrupt sources. Its value
// is the bit index in IE and IF, which is also the default service priority
// (lower values first).
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the video controller enters line 160.
	VBlankInterrupt Interrupt = iota
	// HBlankInterrupt is fired at the end of the drawing period of every line.
	HBlankInterrupt
	// VCountInterrupt is fired when VCOUNT matches the DISPSTAT setting.
	VCountInterrupt
	Timer0Interrupt
	Timer1Interrupt
	Timer2Interrupt
	Timer3Interrupt
	// SerialInterrupt is fired when a serial transfer completes.
	SerialInterrupt
	DMA0Interrupt
	DMA1Interrupt
	DMA2Interrupt
	DMA3Interrupt
	// KeypadInterrupt is fired when the KEYCNT condition is met.
	KeypadInterrupt
	// CartridgeInterrupt is fired when the game pak is removed.
	CartridgeInterrupt

	// InterruptCount is the number of interrupt sources.
	InterruptCount = 14
)

// Mask returns the IE/IF bit of the interrupt.
func (i Interrupt) Mask() uint16 {
	return 1 << i
}

var interruptNames = [InterruptCount]string{
	"VBlank", "HBlank", "VCount",
	"Timer0", "Timer1", "Timer2", "Timer3",
	"Serial",
	"DMA0", "DMA1", "DMA2", "DMA3",
	"Keypad", "Cartridge",
}

func (i Interrupt) String() string {
	if int(i) < len(interruptNames) {
		return interruptNames[i]
	}
	return "Unknown"
}

// TimerInterrupt returns the interrupt source of timer n.
func TimerInterrupt(n int) Interrupt { return Timer0Interrupt + Interrupt(n) }

// DMAInterrupt returns the interrupt source of DMA channel n.
func DMAInterrupt(n int) Interrupt { return DMA0Interrupt + Interrupt(n) }
