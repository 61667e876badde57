package addr

// Base addresses and sizes of the memory regions. Each region lives in its own
// 16 MiB page of the bus; the page number is address >> 24.
const (
	BIOS     uint32 = 0x00000000
	BIOSSize        = 0x4000

	EWRAM     uint32 = 0x02000000
	EWRAMSize        = 0x40000

	IWRAM     uint32 = 0x03000000
	IWRAMSize        = 0x8000

	IO     uint32 = 0x04000000
	IOSize        = 0x400

	Palette     uint32 = 0x05000000
	PaletteSize        = 0x400
	// PaletteBG is the background half of palette RAM (256 colors).
	PaletteBG uint32 = Palette
	// PaletteOBJ is the sprite half of palette RAM (256 colors).
	PaletteOBJ uint32 = Palette + 0x200

	VRAM     uint32 = 0x06000000
	VRAMSize        = 0x18000
	// VRAMBG is the first 64 KiB of VRAM, used by background tiles and maps.
	VRAMBG uint32 = VRAM
	// VRAMOBJ is the last 32 KiB of VRAM, used by sprite tiles.
	VRAMOBJ uint32 = VRAM + 0x10000

	OAM     uint32 = 0x07000000
	OAMSize        = 0x400

	ROM     uint32 = 0x08000000
	ROMSize        = 0x2000000

	SRAM     uint32 = 0x0E000000
	SRAMSize        = 0x10000
)

// Bitmap framebuffers and block addresses in VRAM.
const (
	// Mode3Framebuffer is the 240x160 16bpp framebuffer of mode 3.
	Mode3Framebuffer = VRAM
	// Mode4Page0 and Mode4Page1 are the two 8bpp pages of mode 4.
	Mode4Page0 = VRAM
	Mode4Page1 = VRAM + 0xA000
	// Mode5Page0 and Mode5Page1 are the two 160x128 16bpp pages of mode 5.
	Mode5Page0 = VRAM
	Mode5Page1 = VRAM + 0xA000

	// BGTilesBlockSize is the size of a character (tile) base block.
	BGTilesBlockSize = 0x4000
	// BGMapBlockSize is the size of a screen (map) base block.
	BGMapBlockSize = 0x800
)

// BGTilesBlock returns the address of background character base block n (0-3).
func BGTilesBlock(n int) uint32 {
	return VRAMBG + uint32(n)*BGTilesBlockSize
}

// BGMapBlock returns the address of background screen base block n (0-31).
func BGMapBlock(n int) uint32 {
	return VRAMBG + uint32(n)*BGMapBlockSize
}

// Screen geometry and frame timing.
const (
	ScreenWidth  = 240
	ScreenHeight = 160

	// TotalLines is the number of scanlines in a frame, visible ones included.
	TotalLines = 228
	// CyclesPerLine is the CPU clock count of a full scanline (HDraw + HBlank).
	CyclesPerLine = 1232
	// CyclesPerFrame is the CPU clock count of a full frame.
	CyclesPerFrame = CyclesPerLine * TotalLines
	// ClockHz is the CPU clock.
	ClockHz = 16 * 1024 * 1024
)
