package bmff

// This file implements the box-tree navigation utility (§4.6): locating,
// enumerating and deleting boxes by type (or, for uuid boxes, by extended
// type) within a subtree. It walks Box.Children (container boxes) and
// the nested box lists kept inside sample entries, stsd and abst, since
// those are exactly as much a part of the tree as Children is.

// childList is one mutable list of child boxes owned by a parent box,
// exposed through a getter/setter pair so tree walks can rewrite it in
// place (needed to support deletion).
type childList struct {
	get func() []*Box
	set func([]*Box)
}

// childLists returns every child list b owns. A container box always
// contributes its Children list (even when empty, so appends work);
// leaf boxes contribute whatever nested lists their Body type carries.
func childLists(b *Box) []childList {
	var lists []childList
	if IsContainerBox(b.Type) {
		lists = append(lists, childList{
			get: func() []*Box { return b.Children },
			set: func(v []*Box) { b.Children = v },
		})
	}
	switch body := b.Body.(type) {
	case *Stsd:
		lists = append(lists, childList{
			get: func() []*Box { return body.Entries },
			set: func(v []*Box) { body.Entries = v },
		})
	case *VisualSampleEntry:
		lists = append(lists, childList{
			get: func() []*Box { return body.Children },
			set: func(v []*Box) { body.Children = v },
		})
	case *AudioSampleEntry:
		lists = append(lists, childList{
			get: func() []*Box { return body.Children },
			set: func(v []*Box) { body.Children = v },
		})
	case *Abst:
		lists = append(lists,
			childList{
				get: func() []*Box { return body.SegmentRunTable },
				set: func(v []*Box) { body.SegmentRunTable = v },
			},
			childList{
				get: func() []*Box { return body.FragmentRunTable },
				set: func(v []*Box) { body.FragmentRunTable = v },
			},
		)
	}
	return lists
}

// matches reports whether b is a box of type t.
func matches(b *Box, t BoxType) bool {
	return b.Type == t
}

// First returns the first box of type t found in a pre-order walk of
// root's subtree (root included). It returns ErrBoxNotFound if none
// exists.
func First(root *Box, t BoxType) (*Box, error) {
	var found *Box
	visit(root, func(b *Box) bool {
		if matches(b, t) {
			found = b
			return false
		}
		return true
	})
	if found == nil {
		return nil, ErrBoxNotFound
	}
	return found, nil
}

// FindExtended returns every uuid box in root's subtree whose extended
// type equals ext.
func FindExtended(root *Box, ext [16]byte) []*Box {
	var found []*Box
	visit(root, func(b *Box) bool {
		if b.Type == TypeUuid && b.ExtendedType == ext {
			found = append(found, b)
		}
		return true
	})
	return found
}

// Find returns every box of type t below root, in pre-order; root itself
// is not tested against t. When
// remove is true, each matched box is additionally unlinked from the
// child list it was found in; the returned slice holds the removed
// boxes. Deletion uses a non-incrementing index at each match so that an
// element sliding into the just-vacated slot is still visited, mirroring
// the reference enumerate-and-delete behavior this utility is modeled on.
func Find(root *Box, t BoxType, remove bool) []*Box {
	var found []*Box
	findIn(root, t, remove, &found)
	return found
}

func findIn(b *Box, t BoxType, remove bool, found *[]*Box) {
	for _, list := range childLists(b) {
		children := list.get()
		i := 0
		for i < len(children) {
			child := children[i]
			if matches(child, t) {
				*found = append(*found, child)
				if remove {
					children = append(children[:i:i], children[i+1:]...)
					list.set(children)
					continue
				}
			}
			findIn(child, t, remove, found)
			i++
		}
	}
}

// visit performs a pre-order depth-first walk of b and its subtree,
// calling fn on each box. fn returns false to stop the walk early; visit
// then unwinds without visiting further boxes.
func visit(b *Box, fn func(*Box) bool) bool {
	if !fn(b) {
		return false
	}
	for _, list := range childLists(b) {
		for _, child := range list.get() {
			if !visit(child, fn) {
				return false
			}
		}
	}
	return true
}

// Index returns the position of the first box of type t among b's direct
// children (not descendants), or -1 if none is a direct child.
func Index(b *Box, t BoxType) int {
	for i, child := range b.Children {
		if matches(child, t) {
			return i
		}
	}
	return -1
}
