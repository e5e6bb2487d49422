package vb

import "fmt"

// Instruction formats, the high 6 bits of the first halfword select one.
// I    opcode(6) reg2(5) reg1(5)
// II   opcode(6) reg2(5) imm5(5)
// III  100 cond(4) disp9
// IV   opcode(6) disp26
// V    opcode(6) reg2(5) reg1(5) | imm16
// VI   opcode(6) reg2(5) reg1(5) | disp16
// VII  opcode(6) reg2(5) reg1(5) | subop(6) reserved(10)
type format int

const (
	formatI format = iota
	formatII
	formatIII
	formatIV
	formatV
	formatVI
	formatVII
)

// size returns the instruction length in bytes.
func (f format) size() uint32 {
	switch f {
	case formatI, formatII, formatIII:
		return 2
	}
	return 4
}

type op int

const (
	opIllegal op = iota
	// format I
	opMOV
	opADD
	opSUB
	opCMP
	opSHL
	opSHR
	opJMP
	opSAR
	opMUL
	opDIV
	opMULU
	opDIVU
	opOR
	opAND
	opXOR
	opNOT
	// format II
	opMOVImm
	opADDImm
	opSETF
	opCMPImm
	opSHLImm
	opSHRImm
	opCLI
	opSARImm
	opTRAP
	opRETI
	opHALT
	opLDSR
	opSTSR
	opSEI
	// format III
	opBcond
	// format IV / V
	opMOVEA
	opADDI
	opJR
	opJAL
	opORI
	opANDI
	opXORI
	opMOVHI
	// format VI
	opLDB
	opLDH
	opLDW
	opSTB
	opSTH
	opSTW
	opINB
	opINH
	opINW
	opCAXI
	opOUTB
	opOUTH
	opOUTW
	// format VII
	opCMPF
	opCVTWS
	opCVTSW
	opADDF
	opSUBF
	opMULF
	opDIVF
	opXB
	opXH
	opREV
	opTRNC
	opMPYHW
	// bit string, format II with the sub-op in the imm5 field
	opSCH0BSU
	opSCH0BSD
	opSCH1BSU
	opSCH1BSD
	opORBSU
	opANDBSU
	opXORBSU
	opMOVBSU
	opORNBSU
	opANDNBSU
	opXORNBSU
	opNOTBSU
)

type opcodeInfo struct {
	mnemonic string
	op       op
	format   format
	cycles   int
}

// bitStringGroup holds its sub-op in the imm5 field, the format VII group
// (0x3E) holds it in the second halfword.
const bitStringGroup = 0x1f

var opcodeTable = [64]opcodeInfo{
	{"MOV", opMOV, formatI, 1},         // 0x00
	{"ADD", opADD, formatI, 1},         // 0x01
	{"SUB", opSUB, formatI, 1},         // 0x02
	{"CMP", opCMP, formatI, 1},         // 0x03
	{"SHL", opSHL, formatI, 1},         // 0x04
	{"SHR", opSHR, formatI, 1},         // 0x05
	{"JMP", opJMP, formatI, 3},         // 0x06
	{"SAR", opSAR, formatI, 1},         // 0x07
	{"MUL", opMUL, formatI, 13},        // 0x08
	{"DIV", opDIV, formatI, 38},        // 0x09
	{"MULU", opMULU, formatI, 13},      // 0x0A
	{"DIVU", opDIVU, formatI, 36},      // 0x0B
	{"OR", opOR, formatI, 1},           // 0x0C
	{"AND", opAND, formatI, 1},         // 0x0D
	{"XOR", opXOR, formatI, 1},         // 0x0E
	{"NOT", opNOT, formatI, 1},         // 0x0F
	{"MOV", opMOVImm, formatII, 1},     // 0x10
	{"ADD", opADDImm, formatII, 1},     // 0x11
	{"SETF", opSETF, formatII, 1},      // 0x12
	{"CMP", opCMPImm, formatII, 1},     // 0x13
	{"SHL", opSHLImm, formatII, 1},     // 0x14
	{"SHR", opSHRImm, formatII, 1},     // 0x15
	{"CLI", opCLI, formatII, 12},       // 0x16
	{"SAR", opSARImm, formatII, 1},     // 0x17
	{"TRAP", opTRAP, formatII, 15},     // 0x18
	{"RETI", opRETI, formatII, 10},     // 0x19
	{"HALT", opHALT, formatII, 1},      // 0x1A
	{},                                 // 0x1B
	{"LDSR", opLDSR, formatII, 8},      // 0x1C
	{"STSR", opSTSR, formatII, 8},      // 0x1D
	{"SEI", opSEI, formatII, 12},       // 0x1E
	{"BSTR", opIllegal, formatII, 0},   // 0x1F
	{"B", opBcond, formatIII, 1},       // 0x20
	{"B", opBcond, formatIII, 1},       // 0x21
	{"B", opBcond, formatIII, 1},       // 0x22
	{"B", opBcond, formatIII, 1},       // 0x23
	{"B", opBcond, formatIII, 1},       // 0x24
	{"B", opBcond, formatIII, 1},       // 0x25
	{"B", opBcond, formatIII, 1},       // 0x26
	{"B", opBcond, formatIII, 1},       // 0x27
	{"MOVEA", opMOVEA, formatV, 1},     // 0x28
	{"ADDI", opADDI, formatV, 1},       // 0x29
	{"JR", opJR, formatIV, 3},          // 0x2A
	{"JAL", opJAL, formatIV, 3},        // 0x2B
	{"ORI", opORI, formatV, 1},         // 0x2C
	{"ANDI", opANDI, formatV, 1},       // 0x2D
	{"XORI", opXORI, formatV, 1},       // 0x2E
	{"MOVHI", opMOVHI, formatV, 1},     // 0x2F
	{"LD.B", opLDB, formatVI, 5},       // 0x30
	{"LD.H", opLDH, formatVI, 5},       // 0x31
	{},                                 // 0x32
	{"LD.W", opLDW, formatVI, 5},       // 0x33
	{"ST.B", opSTB, formatVI, 4},       // 0x34
	{"ST.H", opSTH, formatVI, 4},       // 0x35
	{},                                 // 0x36
	{"ST.W", opSTW, formatVI, 4},       // 0x37
	{"IN.B", opINB, formatVI, 5},       // 0x38
	{"IN.H", opINH, formatVI, 5},       // 0x39
	{"CAXI", opCAXI, formatVI, 26},     // 0x3A
	{"IN.W", opINW, formatVI, 5},       // 0x3B
	{"OUT.B", opOUTB, formatVI, 4},     // 0x3C
	{"OUT.H", opOUTH, formatVI, 4},     // 0x3D
	{"FLOAT", opIllegal, formatVII, 0}, // 0x3E
	{"OUT.W", opOUTW, formatVI, 4},     // 0x3F
}

// bitStringTable is indexed by the imm5 field of opcode 0x1F.
var bitStringTable = [16]opcodeInfo{
	{"SCH0BSU", opSCH0BSU, formatII, 20}, // 0x00
	{"SCH0BSD", opSCH0BSD, formatII, 20}, // 0x01
	{"SCH1BSU", opSCH1BSU, formatII, 20}, // 0x02
	{"SCH1BSD", opSCH1BSD, formatII, 20}, // 0x03
	{},                                   // 0x04
	{},                                   // 0x05
	{},                                   // 0x06
	{},                                   // 0x07
	{"ORBSU", opORBSU, formatII, 20},     // 0x08
	{"ANDBSU", opANDBSU, formatII, 20},   // 0x09
	{"XORBSU", opXORBSU, formatII, 20},   // 0x0A
	{"MOVBSU", opMOVBSU, formatII, 20},   // 0x0B
	{"ORNBSU", opORNBSU, formatII, 20},   // 0x0C
	{"ANDNBSU", opANDNBSU, formatII, 20}, // 0x0D
	{"XORNBSU", opXORNBSU, formatII, 20}, // 0x0E
	{"NOTBSU", opNOTBSU, formatII, 20},   // 0x0F
}

// floatTable is indexed by the sub-op of opcode 0x3E, XB and later are
// Nintendo's additions.
var floatTable = [16]opcodeInfo{
	{"CMPF.S", opCMPF, formatVII, 10},  // 0x00
	{},                                 // 0x01
	{"CVT.WS", opCVTWS, formatVII, 16}, // 0x02
	{"CVT.SW", opCVTSW, formatVII, 14}, // 0x03
	{"ADDF.S", opADDF, formatVII, 28},  // 0x04
	{"SUBF.S", opSUBF, formatVII, 28},  // 0x05
	{"MULF.S", opMULF, formatVII, 30},  // 0x06
	{"DIVF.S", opDIVF, formatVII, 44},  // 0x07
	{"XB", opXB, formatVII, 6},         // 0x08
	{"XH", opXH, formatVII, 1},         // 0x09
	{"REV", opREV, formatVII, 22},      // 0x0A
	{"TRNC.SW", opTRNC, formatVII, 14}, // 0x0B
	{"MPYHW", opMPYHW, formatVII, 9},   // 0x0C
	{},                                 // 0x0D
	{},                                 // 0x0E
	{},                                 // 0x0F
}

// condition is the 4 bit condition code of Bcond and SETF.
type condition int

var conditionNames = [16]string{
	"V", "C", "Z", "NH", "N", "R", "LT", "LE",
	"NV", "NC", "NZ", "H", "P", "NOP", "GE", "GT",
}

func (c condition) String() string {
	return conditionNames[c&0xf]
}

// instruction is a decoded instruction.
type instruction struct {
	info   *opcodeInfo
	op     op
	format format
	reg1   int
	reg2   int
	imm    uint32 // imm5 or imm16, not extended
	disp   int32  // sign extended
	cond   condition
	subop  int
}

func (i *instruction) size() uint32 {
	return i.format.size()
}

func (i *instruction) String() string {
	switch i.format {
	case formatI:
		return fmt.Sprintf("%s r%d, r%d", i.info.mnemonic, i.reg1, i.reg2)
	case formatII:
		if i.op >= opSCH0BSU {
			return i.info.mnemonic
		}
		return fmt.Sprintf("%s %d, r%d", i.info.mnemonic, i.imm, i.reg2)
	case formatIII:
		return fmt.Sprintf("B%s %+d", i.cond, i.disp)
	case formatIV:
		return fmt.Sprintf("%s %+d", i.info.mnemonic, i.disp)
	case formatV:
		return fmt.Sprintf("%s 0x%04x, r%d, r%d", i.info.mnemonic, i.imm, i.reg1, i.reg2)
	case formatVI:
		return fmt.Sprintf("%s %d[r%d], r%d", i.info.mnemonic, i.disp, i.reg1, i.reg2)
	case formatVII:
		return fmt.Sprintf("%s r%d, r%d", i.info.mnemonic, i.reg1, i.reg2)
	}
	return "???"
}

var illegalInfo = opcodeInfo{"ILLEGAL", opIllegal, formatI, 0}

// decode splits an instruction into its fields, second is only used by the
// 32 bit formats.
func decode(first, second uint16) instruction {
	info := &opcodeTable[first>>10]
	if info.mnemonic == "" {
		info = &illegalInfo
	}
	inst := instruction{
		info:   info,
		op:     info.op,
		format: info.format,
		reg1:   int(first & 0x1f),
		reg2:   int(first>>5) & 0x1f,
	}
	switch inst.format {
	case formatII:
		inst.imm = uint32(first & 0x1f)
		if first>>10 == bitStringGroup {
			sub := &illegalInfo
			if inst.imm < uint32(len(bitStringTable)) && bitStringTable[inst.imm].mnemonic != "" {
				sub = &bitStringTable[inst.imm]
			}
			inst.info = sub
			inst.op = sub.op
		}
	case formatIII:
		inst.cond = condition(first>>9) & 0xf
		inst.disp = int32(signExtend(uint32(first&0x1ff), 9))
	case formatIV:
		inst.disp = int32(signExtend(uint32(first&0x3ff)<<16|uint32(second), 26))
	case formatV:
		inst.imm = uint32(second)
	case formatVI:
		inst.disp = int32(int16(second))
	case formatVII:
		inst.subop = int(second >> 10)
		sub := &illegalInfo
		if inst.subop < len(floatTable) && floatTable[inst.subop].mnemonic != "" {
			sub = &floatTable[inst.subop]
		}
		inst.info = sub
		inst.op = sub.op
	}
	return inst
}
