// Package inventory translates the slot layouts of Java windows into the windows of a Bedrock client and
// plans the Java clicks that carry out a move made in the Bedrock inventory.
package inventory

import (
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Slot is a slot of a Bedrock window.
type Slot struct {
	Window uint32
	Index  uint32
}

// Slots of the Bedrock UI window.
const (
	UICursor        = 0
	UICraftingSmall = 28
	UICraftingLarge = 32
	UIOutput        = 50
)

// Bedrock container types shown for Java windows.
const (
	ContainerTypeContainer    byte = 0
	ContainerTypeWorkbench    byte = 1
	ContainerTypeFurnace      byte = 2
	ContainerTypeBrewingStand byte = 4
	ContainerTypeDispenser    byte = 6
	ContainerTypeHopper       byte = 8
	ContainerTypeBlastFurnace byte = 27
	ContainerTypeSmoker       byte = 28
)

// Java player window slots.
const (
	JavaCraftingOutput = 0
	JavaCraftingInput  = 1
	JavaArmour         = 5
	JavaMain           = 9
	JavaHotbar         = 36
	JavaOffhand        = 45
	javaPlayerSize     = 46
)

// playerSlots are the slots of the player inventory that follow the container slots of every Java window.
const playerSlots = 36

// Layout is the slot layout of a Java window as shown to a Bedrock client.
type Layout struct {
	// Menu is the name of the Java menu type, or an empty string for the player inventory.
	Menu string
	// ContainerType is the Bedrock container type opened for the window.
	ContainerType byte
	// Block is the Bedrock block the container is opened at.
	Block string
	// Size is the amount of container slots of the Java window in front of the player inventory.
	Size int
	// BedrockSize is the amount of slots of the Bedrock container.
	BedrockSize int

	container []Slot
	java      map[Slot]int
}

// menus holds the Java menu registry of 1.20.3 through 1.20.6.
var menus = []string{
	"generic_9x1", "generic_9x2", "generic_9x3", "generic_9x4", "generic_9x5", "generic_9x6", "generic_3x3",
	"crafter_3x3", "anvil", "beacon", "blast_furnace", "brewing_stand", "crafting", "enchantment", "furnace",
	"grindstone", "hopper", "lectern", "loom", "merchant", "shulker_box", "smithing", "smoker",
	"cartography_table", "stonecutter",
}

type menu struct {
	size          int
	bedrockSize   int
	containerType byte
	block         string
	// order maps container slots onto slots of the Bedrock container, if they differ.
	order []uint32
	// ui places the container slots in the UI window instead.
	ui []uint32
}

var supported = map[string]menu{
	"generic_9x1":   {size: 9, bedrockSize: 27, block: "minecraft:chest"},
	"generic_9x2":   {size: 18, bedrockSize: 27, block: "minecraft:chest"},
	"generic_9x3":   {size: 27, bedrockSize: 27, block: "minecraft:chest"},
	"generic_9x4":   {size: 36, bedrockSize: 54, block: "minecraft:chest"},
	"generic_9x5":   {size: 45, bedrockSize: 54, block: "minecraft:chest"},
	"generic_9x6":   {size: 54, bedrockSize: 54, block: "minecraft:chest"},
	"shulker_box":   {size: 27, bedrockSize: 27, block: "minecraft:undyed_shulker_box"},
	"generic_3x3":   {size: 9, bedrockSize: 9, containerType: ContainerTypeDispenser, block: "minecraft:dispenser"},
	"hopper":        {size: 5, bedrockSize: 5, containerType: ContainerTypeHopper, block: "minecraft:hopper"},
	"furnace":       {size: 3, bedrockSize: 3, containerType: ContainerTypeFurnace, block: "minecraft:furnace"},
	"blast_furnace": {size: 3, bedrockSize: 3, containerType: ContainerTypeBlastFurnace, block: "minecraft:blast_furnace"},
	"smoker":        {size: 3, bedrockSize: 3, containerType: ContainerTypeSmoker, block: "minecraft:smoker"},
	"brewing_stand": {
		size: 5, bedrockSize: 5, containerType: ContainerTypeBrewingStand, block: "minecraft:brewing_stand",
		// Java: bottles, ingredient, fuel. Bedrock: ingredient, bottles, fuel.
		order: []uint32{1, 2, 3, 0, 4},
	},
	"crafting": {
		size: 10, containerType: ContainerTypeWorkbench, block: "minecraft:crafting_table",
		ui: []uint32{UIOutput, 32, 33, 34, 35, 36, 37, 38, 39, 40},
	},
}

// Player is the layout of the player inventory, Java window 0.
var Player = newPlayerLayout()

func newPlayerLayout() *Layout {
	l := &Layout{Size: JavaMain, container: make([]Slot, JavaMain)}
	l.container[JavaCraftingOutput] = Slot{Window: protocol.WindowIDUI, Index: UIOutput}
	for i := range 4 {
		l.container[JavaCraftingInput+i] = Slot{Window: protocol.WindowIDUI, Index: UICraftingSmall + uint32(i)}
		l.container[JavaArmour+i] = Slot{Window: protocol.WindowIDArmour, Index: uint32(i)}
	}
	l.index()
	return l
}

// Open returns the layout of a Java window of the menu type passed, shown as the Bedrock window passed.
func Open(menuType int32, window uint32) (*Layout, error) {
	if menuType < 0 || int(menuType) >= len(menus) {
		return nil, fmt.Errorf("unknown menu type %v", menuType)
	}
	name := menus[menuType]
	m, ok := supported[name]
	if !ok {
		return nil, fmt.Errorf("menu %v has no bedrock equivalent", name)
	}
	l := &Layout{
		Menu:          name,
		ContainerType: m.containerType,
		Block:         m.block,
		Size:          m.size,
		BedrockSize:   m.bedrockSize,
		container:     make([]Slot, m.size),
	}
	for i := range l.container {
		switch {
		case m.ui != nil:
			l.container[i] = Slot{Window: protocol.WindowIDUI, Index: m.ui[i]}
		case m.order != nil:
			l.container[i] = Slot{Window: window, Index: m.order[i]}
		default:
			l.container[i] = Slot{Window: window, Index: uint32(i)}
		}
	}
	l.index()
	return l, nil
}

func (l *Layout) index() {
	l.java = make(map[Slot]int, len(l.container)+playerSlots+1)
	for i, s := range l.container {
		l.java[s] = i
	}
	for i := range playerSlots {
		b, _ := l.Bedrock(l.Size + i)
		l.java[b] = l.Size + i
	}
	if l.Menu == "" {
		l.java[Slot{Window: protocol.WindowIDOffHand}] = JavaOffhand
	}
}

// Len returns the amount of slots of the Java window.
func (l *Layout) Len() int {
	if l.Menu == "" {
		return javaPlayerSize
	}
	return l.Size + playerSlots
}

// Bedrock returns the Bedrock slot a slot of the Java window is shown in.
func (l *Layout) Bedrock(java int) (Slot, bool) {
	switch {
	case java < 0:
		return Slot{}, false
	case java < l.Size:
		return l.container[java], true
	case java < l.Size+27:
		return Slot{Window: protocol.WindowIDInventory, Index: uint32(9 + java - l.Size)}, true
	case java < l.Size+playerSlots:
		return Slot{Window: protocol.WindowIDInventory, Index: uint32(java - l.Size - 27)}, true
	case l.Menu == "" && java == JavaOffhand:
		return Slot{Window: protocol.WindowIDOffHand}, true
	}
	return Slot{}, false
}

// Java returns the slot of the Java window a Bedrock slot corresponds to.
func (l *Layout) Java(b Slot) (int, bool) {
	i, ok := l.java[b]
	return i, ok
}

// PlayerSlot returns the slot of the Java player window that a slot of the window refers to, if the slot
// belongs to the player inventory.
func (l *Layout) PlayerSlot(java int) (int, bool) {
	if l.Menu == "" {
		return java, java >= 0 && java < javaPlayerSize
	}
	if java < l.Size || java >= l.Size+playerSlots {
		return 0, false
	}
	return JavaMain + java - l.Size, true
}

// Unmapped returns the slots of the Bedrock container that no slot of the Java window is shown in.
func (l *Layout) Unmapped() []Slot {
	if l.Menu == "" || len(l.container) == 0 {
		return nil
	}
	var slots []Slot
	w := l.container[0].Window
	for i := range l.BedrockSize {
		s := Slot{Window: w, Index: uint32(i)}
		if _, ok := l.java[s]; !ok {
			slots = append(slots, s)
		}
	}
	return slots
}
