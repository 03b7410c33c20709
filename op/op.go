// Package op defines the byte-code opcodes executed by the virtual machine.
//
// Opcode values are fixed and must match externally compiled procedures bit
// for bit. They are written in octal, the way the byte compiler documents
// them.
package op

// Code is a single opcode byte.
type Code uint8

const (
	// Families occupying eight consecutive values. base+0..5 carry the
	// operand inline, base+6 reads a one-byte operand and base+7 reads a
	// two-byte little-endian operand.
	StackRef Code = 0o0
	Varref   Code = 0o10
	Varset   Code = 0o20
	Varbind  Code = 0o30
	Call     Code = 0o40
	Unbind   Code = 0o50

	// Handlers
	Pophandler        Code = 0o60
	Pushconditioncase Code = 0o61
	Pushcatch         Code = 0o62

	Nth     Code = 0o70
	Symbolp Code = 0o71
	Consp   Code = 0o72
	Stringp Code = 0o73
	Listp   Code = 0o74
	Eq      Code = 0o75
	Memq    Code = 0o76
	Not     Code = 0o77

	Car            Code = 0o100
	Cdr            Code = 0o101
	Cons           Code = 0o102
	List1          Code = 0o103
	List2          Code = 0o104
	List3          Code = 0o105
	List4          Code = 0o106
	Length         Code = 0o107
	Aref           Code = 0o110
	Aset           Code = 0o111
	SymbolValue    Code = 0o112
	SymbolFunction Code = 0o113
	Set            Code = 0o114
	Fset           Code = 0o115
	Get            Code = 0o116
	Substring      Code = 0o117
	Concat2        Code = 0o120
	Concat3        Code = 0o121
	Concat4        Code = 0o122
	Sub1           Code = 0o123
	Add1           Code = 0o124
	Eqlsign        Code = 0o125
	Gtr            Code = 0o126
	Lss            Code = 0o127
	Leq            Code = 0o130
	Geq            Code = 0o131
	Diff           Code = 0o132
	Negate         Code = 0o133
	Plus           Code = 0o134
	Max            Code = 0o135
	Min            Code = 0o136
	Mult           Code = 0o137

	// Buffer and editing primitives
	Point              Code = 0o140
	SaveCurrentBuffer  Code = 0o141
	GotoChar           Code = 0o142
	Insert             Code = 0o143
	PointMax           Code = 0o144
	PointMin           Code = 0o145
	CharAfter          Code = 0o146
	FollowingChar      Code = 0o147
	PrecedingChar      Code = 0o150
	CurrentColumn      Code = 0o151
	IndentTo           Code = 0o152
	Eolp               Code = 0o154
	Eobp               Code = 0o155
	Bolp               Code = 0o156
	Bobp               Code = 0o157
	CurrentBuffer      Code = 0o160
	SetBuffer          Code = 0o161
	SaveCurrentBuffer1 Code = 0o162
	InteractiveP       Code = 0o164
	ForwardChar        Code = 0o165
	ForwardWord        Code = 0o166
	SkipCharsForward   Code = 0o167
	SkipCharsBackward  Code = 0o170
	ForwardLine        Code = 0o171
	CharSyntax         Code = 0o172
	BufferSubstring    Code = 0o173
	DeleteRegion       Code = 0o174
	NarrowToRegion     Code = 0o175
	Widen              Code = 0o176
	EndOfLine          Code = 0o177

	// Constants and control flow
	Constant2           Code = 0o201
	Goto                Code = 0o202
	Gotoifnil           Code = 0o203
	Gotoifnonnil        Code = 0o204
	Gotoifnilelsepop    Code = 0o205
	Gotoifnonnilelsepop Code = 0o206
	Return              Code = 0o207
	Discard             Code = 0o210
	Dup                 Code = 0o211

	SaveExcursion         Code = 0o212
	SaveWindowExcursion   Code = 0o213
	SaveRestriction       Code = 0o214
	Catch                 Code = 0o215
	UnwindProtect         Code = 0o216
	ConditionCase         Code = 0o217
	TempOutputBufferSetup Code = 0o220
	TempOutputBufferShow  Code = 0o221
	UnbindAll             Code = 0o222
	SetMarker             Code = 0o223
	MatchBeginning        Code = 0o224
	MatchEnd              Code = 0o225
	Upcase                Code = 0o226
	Downcase              Code = 0o227
	Stringeqlsign         Code = 0o230
	Stringlss             Code = 0o231
	Equal                 Code = 0o232
	Nthcdr                Code = 0o233
	Elt                   Code = 0o234
	Member                Code = 0o235
	Assq                  Code = 0o236
	Nreverse              Code = 0o237
	Setcar                Code = 0o240
	Setcdr                Code = 0o241
	CarSafe               Code = 0o242
	CdrSafe               Code = 0o243
	Nconc                 Code = 0o244
	Quo                   Code = 0o245
	Rem                   Code = 0o246
	Numberp               Code = 0o247
	Integerp              Code = 0o250

	// Relative branches, one-byte offset biased by 128
	RGoto                Code = 0o252
	RGotoifnil           Code = 0o253
	RGotoifnonnil        Code = 0o254
	RGotoifnilelsepop    Code = 0o255
	RGotoifnonnilelsepop Code = 0o256

	ListN     Code = 0o257
	ConcatN   Code = 0o260
	InsertN   Code = 0o261
	StackSet  Code = 0o262
	StackSet2 Code = 0o263
	DiscardN  Code = 0o266
	Switch    Code = 0o267

	// Constant is the first of the 64 push-constant opcodes. Any opcode at
	// or above it pushes constants[opcode-Constant].
	Constant Code = 0o300
)

// ConstantRange is the number of opcodes reserved for inline constant pushes.
const ConstantRange = 64

// OperandKind describes how an instruction encodes its operand.
type OperandKind uint8

const (
	// OperandNone means the opcode has no operand.
	OperandNone OperandKind = iota
	// OperandFamily means the opcode is the base of an eight-wide family.
	OperandFamily
	// OperandByte means one operand byte follows the opcode.
	OperandByte
	// OperandWord means a two-byte little-endian operand follows the opcode.
	OperandWord
	// OperandRelative means one byte follows, holding a branch offset + 128.
	OperandRelative
	// OperandConstant means the operand is opcode - Constant.
	OperandConstant
)

// Info contains information about an opcode.
type Info struct {
	Code    Code
	Name    string
	Operand OperandKind

	// Primitive names the function an opcode delegates to, if any, and
	// Args is the number of stack operands it consumes. Args is -1 when the
	// count comes from the instruction operand (listN, concatN, insertN).
	Primitive string
	Args      int

	// Obsolete opcodes are recognized but refused by the interpreter.
	Obsolete bool
}

// Valid reports whether the info describes a known opcode.
func (i Info) Valid() bool {
	return i.Name != ""
}

var infos [256]Info

func init() {
	type opInfo struct {
		op      Code
		name    string
		operand OperandKind
	}
	ops := []opInfo{
		{StackRef, "stack-ref", OperandFamily},
		{Varref, "varref", OperandFamily},
		{Varset, "varset", OperandFamily},
		{Varbind, "varbind", OperandFamily},
		{Call, "call", OperandFamily},
		{Unbind, "unbind", OperandFamily},
		{Pophandler, "pophandler", OperandNone},
		{Pushconditioncase, "pushconditioncase", OperandWord},
		{Pushcatch, "pushcatch", OperandWord},
		{Symbolp, "symbolp", OperandNone},
		{Consp, "consp", OperandNone},
		{Stringp, "stringp", OperandNone},
		{Listp, "listp", OperandNone},
		{Eq, "eq", OperandNone},
		{Not, "not", OperandNone},
		{List1, "list1", OperandNone},
		{List2, "list2", OperandNone},
		{List3, "list3", OperandNone},
		{List4, "list4", OperandNone},
		{SaveCurrentBuffer, "save-current-buffer", OperandNone},
		{SaveCurrentBuffer1, "save-current-buffer-1", OperandNone},
		{Constant2, "constant2", OperandWord},
		{Goto, "goto", OperandWord},
		{Gotoifnil, "goto-if-nil", OperandWord},
		{Gotoifnonnil, "goto-if-not-nil", OperandWord},
		{Gotoifnilelsepop, "goto-if-nil-else-pop", OperandWord},
		{Gotoifnonnilelsepop, "goto-if-not-nil-else-pop", OperandWord},
		{Return, "return", OperandNone},
		{Discard, "discard", OperandNone},
		{Dup, "dup", OperandNone},
		{SaveExcursion, "save-excursion", OperandNone},
		{SaveRestriction, "save-restriction", OperandNone},
		{Catch, "catch", OperandNone},
		{UnwindProtect, "unwind-protect", OperandNone},
		{UnbindAll, "unbind-all", OperandNone},
		{Equal, "equal", OperandNone},
		{Numberp, "numberp", OperandNone},
		{Integerp, "integerp", OperandNone},
		{RGoto, "Rgoto", OperandRelative},
		{RGotoifnil, "Rgoto-if-nil", OperandRelative},
		{RGotoifnonnil, "Rgoto-if-not-nil", OperandRelative},
		{RGotoifnilelsepop, "Rgoto-if-nil-else-pop", OperandRelative},
		{RGotoifnonnilelsepop, "Rgoto-if-not-nil-else-pop", OperandRelative},
		{ListN, "listN", OperandByte},
		{StackSet, "stack-set", OperandByte},
		{StackSet2, "stack-set2", OperandWord},
		{DiscardN, "discardN", OperandByte},
		{Switch, "switch", OperandNone},
	}
	for _, o := range ops {
		infos[o.op] = Info{Code: o.op, Name: o.name, Operand: o.operand}
	}

	type primInfo struct {
		op      Code
		name    string
		prim    string
		args    int
		operand OperandKind
	}
	prims := []primInfo{
		{Nth, "nth", "nth", 2, OperandNone},
		{Memq, "memq", "memq", 2, OperandNone},
		{Car, "car", "car", 1, OperandNone},
		{Cdr, "cdr", "cdr", 1, OperandNone},
		{Cons, "cons", "cons", 2, OperandNone},
		{Length, "length", "length", 1, OperandNone},
		{Aref, "aref", "aref", 2, OperandNone},
		{Aset, "aset", "aset", 3, OperandNone},
		{SymbolValue, "symbol-value", "symbol-value", 1, OperandNone},
		{SymbolFunction, "symbol-function", "symbol-function", 1, OperandNone},
		{Set, "set", "set", 2, OperandNone},
		{Fset, "fset", "fset", 2, OperandNone},
		{Get, "get", "get", 2, OperandNone},
		{Substring, "substring", "substring", 3, OperandNone},
		{Concat2, "concat2", "concat", 2, OperandNone},
		{Concat3, "concat3", "concat", 3, OperandNone},
		{Concat4, "concat4", "concat", 4, OperandNone},
		{Sub1, "sub1", "1-", 1, OperandNone},
		{Add1, "add1", "1+", 1, OperandNone},
		{Eqlsign, "eqlsign", "=", 2, OperandNone},
		{Gtr, "gtr", ">", 2, OperandNone},
		{Lss, "lss", "<", 2, OperandNone},
		{Leq, "leq", "<=", 2, OperandNone},
		{Geq, "geq", ">=", 2, OperandNone},
		{Diff, "diff", "-", 2, OperandNone},
		{Negate, "negate", "-", 1, OperandNone},
		{Plus, "plus", "+", 2, OperandNone},
		{Max, "max", "max", 2, OperandNone},
		{Min, "min", "min", 2, OperandNone},
		{Mult, "mult", "*", 2, OperandNone},
		{Point, "point", "point", 0, OperandNone},
		{GotoChar, "goto-char", "goto-char", 1, OperandNone},
		{Insert, "insert", "insert", 1, OperandNone},
		{PointMax, "point-max", "point-max", 0, OperandNone},
		{PointMin, "point-min", "point-min", 0, OperandNone},
		{CharAfter, "char-after", "char-after", 1, OperandNone},
		{FollowingChar, "following-char", "following-char", 0, OperandNone},
		{PrecedingChar, "preceding-char", "preceding-char", 0, OperandNone},
		{CurrentColumn, "current-column", "current-column", 0, OperandNone},
		{IndentTo, "indent-to", "indent-to", 1, OperandNone},
		{Eolp, "eolp", "eolp", 0, OperandNone},
		{Eobp, "eobp", "eobp", 0, OperandNone},
		{Bolp, "bolp", "bolp", 0, OperandNone},
		{Bobp, "bobp", "bobp", 0, OperandNone},
		{CurrentBuffer, "current-buffer", "current-buffer", 0, OperandNone},
		{SetBuffer, "set-buffer", "set-buffer", 1, OperandNone},
		{InteractiveP, "interactive-p", "interactive-p", 0, OperandNone},
		{ForwardChar, "forward-char", "forward-char", 1, OperandNone},
		{ForwardWord, "forward-word", "forward-word", 1, OperandNone},
		{SkipCharsForward, "skip-chars-forward", "skip-chars-forward", 2, OperandNone},
		{SkipCharsBackward, "skip-chars-backward", "skip-chars-backward", 2, OperandNone},
		{ForwardLine, "forward-line", "forward-line", 1, OperandNone},
		{CharSyntax, "char-syntax", "char-syntax", 1, OperandNone},
		{BufferSubstring, "buffer-substring", "buffer-substring", 2, OperandNone},
		{DeleteRegion, "delete-region", "delete-region", 2, OperandNone},
		{NarrowToRegion, "narrow-to-region", "narrow-to-region", 2, OperandNone},
		{Widen, "widen", "widen", 0, OperandNone},
		{EndOfLine, "end-of-line", "end-of-line", 1, OperandNone},
		{SetMarker, "set-marker", "set-marker", 3, OperandNone},
		{MatchBeginning, "match-beginning", "match-beginning", 1, OperandNone},
		{MatchEnd, "match-end", "match-end", 1, OperandNone},
		{Upcase, "upcase", "upcase", 1, OperandNone},
		{Downcase, "downcase", "downcase", 1, OperandNone},
		{Stringeqlsign, "string=", "string=", 2, OperandNone},
		{Stringlss, "string<", "string<", 2, OperandNone},
		{Nthcdr, "nthcdr", "nthcdr", 2, OperandNone},
		{Elt, "elt", "elt", 2, OperandNone},
		{Member, "member", "member", 2, OperandNone},
		{Assq, "assq", "assq", 2, OperandNone},
		{Nreverse, "nreverse", "nreverse", 1, OperandNone},
		{Setcar, "setcar", "setcar", 2, OperandNone},
		{Setcdr, "setcdr", "setcdr", 2, OperandNone},
		{CarSafe, "car-safe", "car-safe", 1, OperandNone},
		{CdrSafe, "cdr-safe", "cdr-safe", 1, OperandNone},
		{Nconc, "nconc", "nconc", 2, OperandNone},
		{Quo, "quo", "/", 2, OperandNone},
		{Rem, "rem", "%", 2, OperandNone},
		{ConcatN, "concatN", "concat", -1, OperandByte},
		{InsertN, "insertN", "insert", -1, OperandByte},
	}
	for _, p := range prims {
		infos[p.op] = Info{
			Code:      p.op,
			Name:      p.name,
			Operand:   p.operand,
			Primitive: p.prim,
			Args:      p.args,
		}
	}

	obsolete := []opInfo{
		{SaveWindowExcursion, "save-window-excursion", OperandNone},
		{ConditionCase, "condition-case", OperandNone},
		{TempOutputBufferSetup, "temp-output-buffer-setup", OperandNone},
		{TempOutputBufferShow, "temp-output-buffer-show", OperandNone},
	}
	for _, o := range obsolete {
		infos[o.op] = Info{Code: o.op, Name: o.name, Operand: o.operand, Obsolete: true}
	}

	// Each family member shares its base's name and info.
	for _, base := range []Code{StackRef, Varref, Varset, Varbind, Call, Unbind} {
		for i := Code(1); i < 8; i++ {
			infos[base+i] = infos[base]
			infos[base+i].Code = base + i
		}
	}
	for i := 0; i < ConstantRange; i++ {
		infos[int(Constant)+i] = Info{
			Code:    Constant + Code(i),
			Name:    "constant",
			Operand: OperandConstant,
		}
	}
}

// GetInfo returns information about the given opcode. The returned Info is
// the zero value (Valid reports false) for bytes outside the table.
func GetInfo(code Code) Info {
	return infos[code]
}

// IsBranch reports whether the opcode transfers control to an operand
// target, either absolute or relative.
func IsBranch(code Code) bool {
	switch code {
	case Goto, Gotoifnil, Gotoifnonnil, Gotoifnilelsepop, Gotoifnonnilelsepop,
		RGoto, RGotoifnil, RGotoifnonnil, RGotoifnilelsepop, RGotoifnonnilelsepop,
		Pushcatch, Pushconditioncase:
		return true
	}
	return false
}

// FamilyBase returns the base opcode of an eight-wide family and true, or
// the code itself and false if the opcode is not part of a family.
func FamilyBase(code Code) (Code, bool) {
	if code < Pophandler {
		return code &^ 7, true
	}
	return code, false
}
