package gba

// Memory map regions reachable through the bus
const (
	EWRAMStart = 0x02000000
	EWRAMSize  = 0x40000 // 256KB
	IWRAMStart = 0x03000000
	IWRAMSize  = 0x8000 // 32KB
	IOStart    = 0x04000000
	IOSize     = 0x400
	PaletteRAM = 0x05000000
	PaletteLen = 0x400 // 512 BGR555 entries, BG then OBJ
	VRAMStart  = 0x06000000
	VRAMSize   = 0x18000 // 96KB
	ObjVRAM    = 0x06010000
	ObjVRAMLen = 0x8000 // 32KB of object tiles
	OAMStart   = 0x07000000
	OAMSize    = 0x400
	SRAMStart  = 0x0E000000
	SRAMSize   = 0x8000
)

// I/O register offsets from IOStart
const (
	RegDISPCNT  = 0x000
	RegDISPSTAT = 0x004
	RegVCOUNT   = 0x006
	RegBG0CNT   = 0x008
	RegWIN0H    = 0x040
	RegWIN1H    = 0x042
	RegWIN0V    = 0x044
	RegWIN1V    = 0x046
	RegWININ    = 0x048
	RegWINOUT   = 0x04A
	RegBLDCNT   = 0x050
	RegBLDALPHA = 0x052
	RegBLDY     = 0x054

	RegSOUND1CNTL = 0x060
	RegSOUND1CNTH = 0x062
	RegSOUND1CNTX = 0x064
	RegSOUNDCNTL  = 0x080
	RegSOUNDCNTH  = 0x082
	RegSOUNDCNTX  = 0x084

	RegDMA0SAD  = 0x0B0 // Channel n at RegDMA0SAD + 12*n
	RegTM0CNTL  = 0x100 // Timer n at RegTM0CNTL + 4*n
	RegKEYINPUT = 0x130

	RegIE  = 0x200
	RegIF  = 0x202
	RegIME = 0x208
)

// mGBA debug port, outside the regular I/O block
const (
	MgbaDebugEnable = 0x04FFF780
	MgbaDebugFlags  = 0x04FFF700
	MgbaDebugBuffer = 0x04FFF600
	mgbaBufferLen   = 256

	mgbaEnableRequest = 0xC0DE
	mgbaEnableAck     = 0x1DEA
	mgbaFlagSend      = 0x100
)

// Video timing
const (
	ScreenWidth  = 240
	ScreenHeight = 160

	CyclesPerSecond   = 1 << 24 // 16.78 MHz
	CyclesPerScanline = 1232
	ScanlinesPerFrame = 228
	CyclesPerFrame    = CyclesPerScanline * ScanlinesPerFrame // 280896, ~59.73 Hz
	vblankStartCycle  = CyclesPerScanline * ScreenHeight
)

// DISPCNT bits
const (
	dispcntObjMapping1D = 1 << 6
	dispcntForceBlank   = 1 << 7
	dispcntBG0          = 1 << 8
	dispcntOBJ          = 1 << 12
	dispcntWin0         = 1 << 13
	dispcntWin1         = 1 << 14
	dispcntObjWin       = 1 << 15
)

// DISPSTAT bits
const (
	dispstatVBlank    = 1 << 0
	dispstatHBlank    = 1 << 1
	dispstatVBlankIRQ = 1 << 3
)
