package resolver

// Builtin describes a host-imported function callable by name from
// UWScript source, as opposed to the three babl_* entry points that are
// only reachable through the ask/menu/filtermenu statements.
type Builtin struct {
	Name string
	ID   int
}

// builtins is the name -> import ID table for every imported function
// exposed as an ordinary callable in UWScript source. IDs 0, 1, and 3
// (babl_menu, babl_fmenu, babl_ask) are deliberately absent: they are only
// reachable through the menu/filtermenu/ask statements.
var builtins = []Builtin{
	{"compare", 4},
	{"random", 5},
	{"contains", 7},
	{"length", 11},
	{"get_quest", 15},
	{"set_quest", 16},
	{"sex", 17},
	{"show_inv", 18},
	{"give_to_npc", 19},
	{"give_ptr_npc", 20},
	{"take_from_npc", 21},
	{"take_id_from_npc", 22},
	{"identify_inv", 23},
	{"do_offer", 24},
	{"do_demand", 25},
	{"do_inv_create", 26},
	{"do_inv_delete", 27},
	{"check_inv_quality", 28},
	{"set_inv_quality", 29},
	{"count_inv", 30},
	{"setup_to_barter", 31},
	{"end_barter", 32},
	{"do_judgement", 33},
	{"do_decline", 34},
	{"set_likes_dislikes", 36},
	{"gronk_door", 37},
	{"set_race_attitude", 38},
	{"place_object", 39},
	{"take_from_npc_inv", 40},
	{"add_to_npc_inv", 41},
	{"remove_talker", 42},
	{"set_attitude", 43},
	{"x_skills", 44},
	{"x_traps", 45},
	{"x_obj_stuff", 47},
	{"find_inv", 48},
	{"find_barter", 49},
	{"find_barter_total", 50},
}

// BuiltinByName maps a builtin name to its import ID table.
var BuiltinByName = func() map[string]int {
	m := make(map[string]int, len(builtins))
	for _, b := range builtins {
		m[b.Name] = b.ID
	}
	return m
}()

// hostBuiltins is the name -> import ID table for the fantasy-console host
// interface (graphics, sound, input, and math functions the console
// package implements at IDs 100-503). These are a distinct namespace from
// the conversation-level builtins above: a conversation slot talks to an
// NPC, a console program talks to the screen, speaker, and keyboard.
var hostBuiltins = []Builtin{
	{"clear_screen", HostClearScreen},
	{"set_pixel", HostSetPixel},
	{"draw_line", HostDrawLine},
	{"draw_rect", HostDrawRect},
	{"fill_rect", HostFillRect},
	{"draw_circle", HostDrawCircle},
	{"draw_sprite", HostDrawSprite},
	{"print", HostPrint},
	{"flip", HostFlip},
	{"play_tone", HostPlayTone},
	{"is_key_pressed", HostIsKeyPressed},
	{"is_key_released", HostIsKeyReleased},
	{"math_sin", HostMathSin},
	{"math_cos", HostMathCos},
	{"math_sqrt", HostMathSqrt},
}

// Host-reserved fantasy-console import IDs, named here so resolver and
// codegen share one source of truth instead of repeating magic numbers.
const (
	HostClearScreen    = 100
	HostSetPixel       = 101
	HostDrawLine       = 102
	HostDrawRect       = 103
	HostFillRect       = 104
	HostDrawCircle     = 105
	HostDrawSprite     = 106
	HostPrint          = 107
	HostFlip           = 109
	HostPlayTone       = 200
	HostIsKeyPressed   = 300
	HostIsKeyReleased  = 301
	HostMathSin        = 501
	HostMathCos        = 502
	HostMathSqrt       = 503
)

// HostBuiltinByName maps a fantasy-console host function name to its
// import ID.
var HostBuiltinByName = func() map[string]int {
	m := make(map[string]int, len(hostBuiltins))
	for _, b := range hostBuiltins {
		m[b.Name] = b.ID
	}
	return m
}()
