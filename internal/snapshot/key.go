package snapshot

import (
	"fmt"
	"strconv"
	"strings"
)

// View identifies which scope is on screen.
type View int

const (
	ViewRoot View = iota
	ViewList
	ViewItem
)

// String returns the string representation of the view
func (v View) String() string {
	switch v {
	case ViewRoot:
		return "root"
	case ViewList:
		return "list"
	case ViewItem:
		return "item"
	default:
		return "unknown"
	}
}

// ViewKey is the opaque identity a snapshot is stored under.
type ViewKey string

// RootKey is the key of the top-level view.
const RootKey ViewKey = "root"

// ListKey keys a zoom into a list.
func ListKey(listID int) ViewKey {
	return ViewKey("list:" + strconv.Itoa(listID))
}

// ItemKey keys a zoom into an item. The parent list is part of the key so
// items under different lists never collide.
func ItemKey(listID, itemID int) ViewKey {
	return ViewKey(fmt.Sprintf("item:%d/%d", listID, itemID))
}

// Key builds the key for a view. ViewList takes the list id; ViewItem takes
// the list id then the item id. Missing ids are treated as zero.
func Key(view View, ids ...int) ViewKey {
	id := func(i int) int {
		if i < len(ids) {
			return ids[i]
		}
		return 0
	}
	switch view {
	case ViewList:
		return ListKey(id(0))
	case ViewItem:
		return ItemKey(id(0), id(1))
	default:
		return RootKey
	}
}

// ParseKey validates a key received from a transport and splits it back
// into its view and ids.
func ParseKey(s string) (ViewKey, View, []int, error) {
	s = strings.TrimSpace(s)
	if s == string(RootKey) {
		return RootKey, ViewRoot, nil, nil
	}

	prefix, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return "", ViewRoot, nil, fmt.Errorf("invalid view key %q", s)
	}

	switch prefix {
	case "list":
		listID, err := strconv.Atoi(rest)
		if err != nil {
			return "", ViewRoot, nil, fmt.Errorf("invalid list id in view key %q", s)
		}
		return ListKey(listID), ViewList, []int{listID}, nil
	case "item":
		listPart, itemPart, ok := strings.Cut(rest, "/")
		if !ok {
			return "", ViewRoot, nil, fmt.Errorf("item view key %q needs <list>/<item>", s)
		}
		listID, err := strconv.Atoi(listPart)
		if err != nil {
			return "", ViewRoot, nil, fmt.Errorf("invalid list id in view key %q", s)
		}
		itemID, err := strconv.Atoi(itemPart)
		if err != nil {
			return "", ViewRoot, nil, fmt.Errorf("invalid item id in view key %q", s)
		}
		return ItemKey(listID, itemID), ViewItem, []int{listID, itemID}, nil
	default:
		return "", ViewRoot, nil, fmt.Errorf("unknown view %q in key %q", prefix, s)
	}
}
