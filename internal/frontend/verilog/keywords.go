package verilog

import "github.com/mvp-joe/hdlast/internal/hdlobjects"

var keywords = setOf(
	"module", "macromodule", "endmodule", "input", "output", "inout", "ref",
	"wire", "reg", "logic", "integer", "real", "realtime", "time", "genvar",
	"parameter", "localparam", "specparam", "defparam", "assign", "deassign", "force", "release",
	"always", "always_ff", "always_comb", "always_latch", "initial", "final",
	"begin", "end", "if", "else", "case", "casex", "casez", "endcase", "default",
	"for", "while", "repeat", "forever", "do", "foreach", "return", "break", "continue",
	"function", "endfunction", "task", "endtask", "generate", "endgenerate",
	"specify", "endspecify", "fork", "join", "join_any", "join_none",
	"supply0", "supply1", "tri", "tri0", "tri1", "triand", "trior", "trireg",
	"wand", "wor", "uwire", "signed", "unsigned", "var", "const", "static", "automatic",
	"bit", "byte", "shortint", "int", "longint", "shortreal", "string", "void", "chandle", "event",
	"typedef", "enum", "struct", "union", "packed", "import", "export",
	"posedge", "negedge", "edge", "or", "and", "nand", "nor", "xor", "xnor", "not",
	"buf", "bufif0", "bufif1", "notif0", "notif1", "pullup", "pulldown",
	"nmos", "pmos", "cmos", "rnmos", "rpmos", "rcmos",
	"tran", "tranif0", "tranif1", "rtran", "rtranif0", "rtranif1",
	"interface", "endinterface", "modport", "package", "endpackage",
	"assert", "assume", "cover", "property", "endproperty", "sequence", "endsequence",
	"wait", "disable", "unique", "priority", "timeunit", "timeprecision",
)

// gate primitives are instantiated like modules but are not design units.
var gates = setOf(
	"and", "nand", "or", "nor", "xor", "xnor", "not", "buf",
	"bufif0", "bufif1", "notif0", "notif1", "pullup", "pulldown",
	"nmos", "pmos", "cmos", "rnmos", "rpmos", "rcmos",
	"tran", "tranif0", "tranif1", "rtran", "rtranif0", "rtranif1",
)

var directions = setOf("input", "output", "inout", "ref")

// portModes maps direction keywords onto the shared port modes.
var portModes = map[string]hdlobjects.Direction{
	"input":  hdlobjects.DirIn,
	"output": hdlobjects.DirOut,
	"inout":  hdlobjects.DirInout,
	"ref":    hdlobjects.DirRef,
}

// statements that introduce a procedural block.
var procedural = setOf("always", "always_ff", "always_comb", "always_latch", "initial", "final")

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
