package machine

import "github.com/dolthub/swiss"

// Imported-function IDs wired in the conversation-level table. 0, 1, and 3
// are reserved for the statement-driven menu/filter-menu/ask entry points;
// ImportPrint (2) has no UWScript source name and is reachable only from
// raw assembly; the rest are plain callables from UWScript source.
const (
	ImportBablMenu  = 0
	ImportBablFMenu = 1
	ImportPrint     = 2
	ImportBablAsk   = 3
	ImportCompare   = 4
	ImportRandom    = 5
	ImportContains  = 7
	ImportLength    = 11

	ImportGetQuest         = 15
	ImportSetQuest         = 16
	ImportSex              = 17
	ImportShowInv          = 18
	ImportGiveToNpc        = 19
	ImportGivePtrNpc       = 20
	ImportTakeFromNpc      = 21
	ImportTakeIDFromNpc    = 22
	ImportIdentifyInv      = 23
	ImportDoOffer          = 24
	ImportDoDemand         = 25
	ImportDoInvCreate      = 26
	ImportDoInvDelete      = 27
	ImportCheckInvQuality  = 28
	ImportSetInvQuality    = 29
	ImportCountInv         = 30
	ImportSetupToBarter    = 31
	ImportEndBarter        = 32
	ImportDoJudgement      = 33
	ImportDoDecline        = 34
	ImportSetLikesDislikes = 36
	ImportGronkDoor        = 37
	ImportSetRaceAttitude  = 38
	ImportPlaceObject      = 39
	ImportTakeFromNpcInv   = 40
	ImportAddToNpcInv      = 41
	ImportRemoveTalker     = 42
	ImportSetAttitude      = 43
	ImportXSkills          = 44
	ImportXTraps           = 45
	ImportXObjStuff        = 47
	ImportFindInv          = 48
	ImportFindBarter       = 49
	ImportFindBarterTotal  = 50
)

// Host-reserved import ID ranges for the fantasy-console runtime.
const (
	HostGraphicsStart = 100
	HostGraphicsEnd   = 109
	HostSoundStart    = 200
	HostSoundEnd      = 299
	HostInputStart    = 300
	HostInputEnd      = 399
	HostMathStart     = 500
	HostMathEnd       = 599
	HostSystemStart   = 900
	HostSystemEnd     = 999
)

// Import is a host-provided routine invoked by CALLI. args holds the
// dereferenced argument cells in call order; it returns the value written
// to the result register.
type Import func(vm *VM, args []uint16) (uint16, error)

// ImportTable is the registration table mapping import IDs to handlers.
// Unregistered IDs fail with an UnknownImport error.
type ImportTable struct {
	fns *swiss.Map[uint16, Import]
}

// NewImportTable returns an empty registration table.
func NewImportTable() *ImportTable {
	return &ImportTable{fns: swiss.NewMap[uint16, Import](64)}
}

// Register binds id to fn, overwriting any previous registration.
func (t *ImportTable) Register(id uint16, fn Import) {
	t.fns.Put(id, fn)
}

// Lookup returns the handler registered for id, if any.
func (t *ImportTable) Lookup(id uint16) (Import, bool) {
	return t.fns.Get(id)
}

// NewConversationImports returns a table pre-registered with stub handlers
// (no-ops returning 0) for every named conversation-level import ID above
// except babl_menu/babl_fmenu/babl_ask, which are not registered; a game
// host is expected to override the stubs with real game-state logic by
// calling Register again.
func NewConversationImports() *ImportTable {
	t := NewImportTable()
	stub := func(vm *VM, args []uint16) (uint16, error) { return 0, nil }
	for _, id := range []uint16{
		ImportPrint, ImportCompare, ImportRandom, ImportContains, ImportLength,
		ImportGetQuest, ImportSetQuest, ImportSex, ImportShowInv,
		ImportGiveToNpc, ImportGivePtrNpc, ImportTakeFromNpc, ImportTakeIDFromNpc,
		ImportIdentifyInv, ImportDoOffer, ImportDoDemand, ImportDoInvCreate,
		ImportDoInvDelete, ImportCheckInvQuality, ImportSetInvQuality, ImportCountInv,
		ImportSetupToBarter, ImportEndBarter, ImportDoJudgement, ImportDoDecline,
		ImportSetLikesDislikes, ImportGronkDoor, ImportSetRaceAttitude, ImportPlaceObject,
		ImportTakeFromNpcInv, ImportAddToNpcInv, ImportRemoveTalker, ImportSetAttitude,
		ImportXSkills, ImportXTraps, ImportXObjStuff, ImportFindInv, ImportFindBarter,
		ImportFindBarterTotal,
	} {
		t.Register(id, stub)
	}
	// babl_menu/babl_fmenu/babl_ask suspend the VM; handled directly by the
	// execution loop via IsSuspending, not through the table.
	return t
}

// IsSuspending reports whether id is one of the player-input entry points
// that transitions the VM to WaitingResponse instead of completing
// synchronously.
func IsSuspending(id uint16) bool {
	return id == ImportBablMenu || id == ImportBablFMenu || id == ImportBablAsk
}
