// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/saferwall/mxf/internal/log"
)

// KeepFilter decides whether a parsed set should be kept in the graph.
// Returning false drops the set (used by readers that only need a subset
// of the graph, e.g. essence descriptors, to bound memory — spec.md §4.4).
type KeepFilter func(setKey UL, uid UUID) bool

// HeaderMetadata is the container of every Set belonging to one partition:
// a primer pack, a data-model handle, and a byInstanceUID index (there is
// no separate by-key index; SetsByKey scans the sets in insertion order).
// A HeaderMetadata exclusively owns its sets; references
// between them are instance UIDs, re-derivable from byInstanceUID, so
// serialisation never sees a dangling pointer (spec.md §5).
type HeaderMetadata struct {
	Model  *DataModel
	Primer *PrimerPack

	byInstanceUID map[UUID]*Set
	order         []UUID // insertion order, used as a serialisation fallback.

	logger *log.Helper
}

// NewHeaderMetadata returns an empty, writable HeaderMetadata over a
// finalised model.
func NewHeaderMetadata(model *DataModel) *HeaderMetadata {
	return &HeaderMetadata{
		Model:         model,
		Primer:        NewPrimerPack(),
		byInstanceUID: make(map[UUID]*Set),
		logger:        log.NewHelper(nil),
	}
}

// SetLogger attaches a logger used for non-fatal diagnostics (dark sets,
// unresolved weak references).
func (h *HeaderMetadata) SetLogger(l *log.Helper) { h.logger = l }

// AddSet inserts set into the graph, owned by h from this point on.
// InstanceUID is tracked on the Set struct itself but must also carry as a
// regular item so it round-trips on the wire; fold it in here rather than
// requiring every constructor to SetRaw it explicitly.
func (h *HeaderMetadata) AddSet(set *Set) {
	if !set.Dark && set.items != nil {
		set.items[ItemInstanceUID] = append([]byte(nil), set.InstanceUID[:]...)
	}
	if _, exists := h.byInstanceUID[set.InstanceUID]; !exists {
		h.order = append(h.order, set.InstanceUID)
	}
	h.byInstanceUID[set.InstanceUID] = set
}

// SetByInstanceUID looks up a set by its instance UID.
func (h *HeaderMetadata) SetByInstanceUID(uid UUID) (*Set, bool) {
	s, ok := h.byInstanceUID[uid]
	return s, ok
}

// SetsByKey returns every non-dark set whose SetKey equals key, in
// insertion order.
func (h *HeaderMetadata) SetsByKey(key UL) []*Set {
	var out []*Set
	for _, uid := range h.order {
		s := h.byInstanceUID[uid]
		if !s.Dark && s.SetKey.Equal(key) {
			out = append(out, s)
		}
	}
	return out
}

// Preface returns the graph's single Preface set. Spec.md §3 requires
// exactly one to exist; zero or more than one is ErrNoPreface.
func (h *HeaderMetadata) Preface() (*Set, error) {
	prefaces := h.SetsByKey(SetPreface)
	if len(prefaces) != 1 {
		return nil, newErr("Preface", KindMalformed, ErrNoPreface)
	}
	return prefaces[0], nil
}

// AllSets returns every set (including dark sets) in insertion order.
func (h *HeaderMetadata) AllSets() []*Set {
	out := make([]*Set, 0, len(h.order))
	for _, uid := range h.order {
		out = append(out, h.byInstanceUID[uid])
	}
	return out
}

// --- Write path -------------------------------------------------------

// Write serialises the graph: primer pack KLV first, then one KLV per set
// in a deterministic depth-first order starting from Preface (spec.md
// §4.4). Strong references are walked; sets unreachable from Preface by a
// strong reference are appended afterwards in insertion order so nothing
// is silently dropped (still useful for a caller that is staging an
// as-yet-disconnected subgraph).
func (h *HeaderMetadata) Write(w io.Writer) error {
	preface, err := h.Preface()
	if err != nil {
		return err
	}

	visited := make(map[UUID]bool)
	var ordered []*Set
	var visit func(s *Set)
	visit = func(s *Set) {
		if s == nil || visited[s.InstanceUID] {
			return
		}
		visited[s.InstanceUID] = true
		ordered = append(ordered, s)
		if s.Dark {
			return
		}
		for _, key := range sortedItemKeys(s) {
			def, _, ok := h.Model.FindItem(s.SetKey, key)
			if !ok {
				continue
			}
			switch def.Type {
			case TypeStrongRef:
				if uid, err := s.GetStrongRef(key); err == nil {
					visit(h.byInstanceUID[uid])
				}
			case TypeStrongRefArray:
				if refs, err := s.GetRefArray(key); err == nil {
					for _, uid := range refs {
						visit(h.byInstanceUID[uid])
					}
				}
			}
		}
	}
	visit(preface)
	for _, uid := range h.order {
		visit(h.byInstanceUID[uid])
	}

	// Register every known item key so the primer is complete before it
	// is written.
	for _, s := range ordered {
		if s.Dark {
			continue
		}
		for _, key := range sortedItemKeys(s) {
			def, _, ok := h.Model.FindItem(s.SetKey, key)
			if !ok {
				continue
			}
			h.Primer.RegisterStatic(key, def.DefaultTag)
		}
		for tag := range s.unknownTags {
			// Unknown-tag items keep their original tag and have no UL to
			// bind in the primer; when the tag is free, only move the
			// allocator past it so no dynamic tag reuses it.
			if _, occupied := h.Primer.tagToUID[tag]; !occupied {
				h.Primer.nextTag = maxUint16(h.Primer.nextTag, tag+1)
			}
		}
	}

	if err := WritePrimerPack(w, h.Primer); err != nil {
		return err
	}

	for _, s := range ordered {
		if err := h.writeSet(w, s); err != nil {
			return err
		}
	}
	return nil
}

func (h *HeaderMetadata) writeSet(w io.Writer, s *Set) error {
	if s.Dark {
		return WriteTriple(w, s.SetKey, s.DarkBytes)
	}

	var body bytes.Buffer
	for _, key := range sortedItemKeys(s) {
		def, _, ok := h.Model.FindItem(s.SetKey, key)
		if !ok {
			continue
		}
		tag, _ := h.Primer.LookupTag(key)
		value := s.items[key]
		writeLocalItem(&body, tag, value)
	}
	for tag, value := range s.unknownTags {
		writeLocalItem(&body, tag, value)
	}

	return WriteTriple(w, s.SetKey, body.Bytes())
}

func writeLocalItem(w io.Writer, tag uint16, value []byte) {
	hdr := make([]byte, 4)
	binary.BigEndian.PutUint16(hdr[0:2], tag)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(value)))
	w.Write(hdr)
	w.Write(value)
}

func sortedItemKeys(s *Set) []UL {
	keys := s.ItemKeys()
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys
}

func maxUint16(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

// --- Read path --------------------------------------------------------

// ReadHeaderMetadata reads a primer pack followed by a run of set KLVs
// from r until r is exhausted (callers pass a reader bounded to the
// header metadata byte range, e.g. an io.LimitReader over
// PartitionPack.HeaderByteCount). Unknown set keys become dark sets;
// unresolved weak references are logged and tolerated; unresolved strong
// references are a fatal ErrBrokenStrongReference once the whole graph has
// been loaded into memory (resolution is a pass separate from parsing,
// which is what makes cyclic graphs possible, per spec.md §4.4).
func ReadHeaderMetadata(r io.Reader, model *DataModel, keep KeepFilter, logger *log.Helper) (*HeaderMetadata, error) {
	if !model.Finalised() {
		return nil, newErr("ReadHeaderMetadata", KindLogicError, ErrDataModelNotFinalised)
	}
	if logger == nil {
		logger = log.NewHelper(nil)
	}

	h := NewHeaderMetadata(model)
	h.logger = logger

	first, err := ReadTriple(r)
	if err != nil {
		return nil, err
	}
	if !IsPrimerPackKey(first.Key) {
		return nil, newErr("ReadHeaderMetadata", KindMalformed, ErrNotAPartitionPack)
	}
	primerBytes, err := drainValue(first)
	if err != nil {
		return nil, err
	}
	primer, err := ReadPrimerPack(primerBytes)
	if err != nil {
		return nil, err
	}
	h.Primer = primer

	for {
		t, err := ReadTriple(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		raw, err := drainValue(t)
		if err != nil {
			return nil, err
		}
		if IsFiller(t.Key) {
			continue
		}

		if err := h.readSet(t.Key, raw, keep); err != nil {
			return nil, err
		}
	}

	if err := h.resolveReferences(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HeaderMetadata) readSet(setKey UL, raw []byte, keep KeepFilter) error {
	setDef, known := h.Model.SetDefByKey(setKey)
	if !known {
		uid := darkSetSyntheticUID(raw)
		if keep != nil && !keep(setKey, uid) {
			return nil
		}
		h.AddSet(newDarkSet(setKey, uid, raw))
		h.logger.Debugf("dark set %s preserved (%d bytes)", setKey, len(raw))
		return nil
	}
	_ = setDef

	set := &Set{
		SetKey:      setKey,
		items:       make(map[UL][]byte),
		unknownTags: make(map[uint16][]byte),
		model:       h.Model,
	}

	offset := 0
	for offset+4 <= len(raw) {
		tag := binary.BigEndian.Uint16(raw[offset : offset+2])
		length := binary.BigEndian.Uint16(raw[offset+2 : offset+4])
		offset += 4
		if offset+int(length) > len(raw) {
			return newErr("readSet", KindMalformed, ErrUnexpectedEOF)
		}
		value := raw[offset : offset+int(length)]
		offset += int(length)

		itemKey, ok := h.Primer.LookupUID(tag)
		if !ok {
			set.unknownTags[tag] = append([]byte(nil), value...)
			continue
		}
		if _, _, ok := h.Model.FindItem(setKey, itemKey); !ok {
			set.unknownTags[tag] = append([]byte(nil), value...)
			continue
		}
		set.items[itemKey] = append([]byte(nil), value...)
	}

	if iuidBytes, ok := set.items[ItemInstanceUID]; ok && len(iuidBytes) == 16 {
		copy(set.InstanceUID[:], iuidBytes)
	} else {
		set.InstanceUID = darkSetSyntheticUID(raw)
	}

	if keep != nil && !keep(setKey, set.InstanceUID) {
		return nil
	}
	h.AddSet(set)
	return nil
}

// darkSetSyntheticUID derives a stable correlation id for a set whose
// real instance UID cannot be located (dark sets, or malformed sets
// missing the InstanceUID item): the first 16 bytes of its raw value if
// present, else its key repeated. This id is never treated as resolvable
// from another set's reference; it only keys the byInstanceUID inventory.
func darkSetSyntheticUID(raw []byte) UUID {
	var u UUID
	if len(raw) >= 16 {
		copy(u[:], raw[:16])
	} else {
		copy(u[:], raw)
	}
	return u
}

func (h *HeaderMetadata) resolveReferences() error {
	for _, uid := range h.order {
		s := h.byInstanceUID[uid]
		if s.Dark {
			continue
		}
		for key, value := range s.items {
			def, _, ok := h.Model.FindItem(s.SetKey, key)
			if !ok {
				continue
			}
			switch def.Type {
			case TypeStrongRef:
				if len(value) < 16 {
					continue
				}
				var target UUID
				copy(target[:], value)
				if _, ok := h.byInstanceUID[target]; !ok {
					return newErr("resolveReferences", KindBrokenReference, ErrBrokenStrongReference)
				}
			case TypeWeakRef:
				if len(value) < 16 {
					continue
				}
				var target UUID
				copy(target[:], value)
				if _, ok := h.byInstanceUID[target]; !ok {
					h.logger.Warnf("unresolved weak reference from %s item %s", s.InstanceUID, key)
				}
			case TypeStrongRefArray:
				refs, err := s.GetRefArray(key)
				if err != nil {
					continue
				}
				for _, target := range refs {
					if _, ok := h.byInstanceUID[target]; !ok {
						return newErr("resolveReferences", KindBrokenReference, ErrBrokenStrongReference)
					}
				}
			case TypeWeakRefArray:
				refs, err := s.GetRefArray(key)
				if err != nil {
					continue
				}
				for _, target := range refs {
					if _, ok := h.byInstanceUID[target]; !ok {
						h.logger.Warnf("unresolved weak reference from %s item %s", s.InstanceUID, key)
					}
				}
			}
		}
	}
	return nil
}
