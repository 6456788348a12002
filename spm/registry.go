// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import "github.com/chenhengqi/go-spmalloc/ir"

// Kind classifies a VarInfo by where it would live if not resident in the
// scratchpad.
type Kind int

const (
	KindStack Kind = iota
	KindGlobal
)

func (k Kind) String() string {
	switch k {
	case KindStack:
		return "stack"
	case KindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// VarInfo is the allocator's internal record of one addressable object.
// VarInfos are interned by Registry and compared by pointer identity
// everywhere downstream; two accesses to the same object always resolve
// to the same *VarInfo.
type VarInfo struct {
	ID   string
	Size int
	Kind Kind
}

func (v *VarInfo) Ref() ir.VarRef {
	var k ir.AccessKind
	if v.Kind == KindGlobal {
		k = ir.GlobalAccess
	} else {
		k = ir.StackAccess
	}
	return ir.VarRef{ID: v.ID, Kind: k, Size: v.Size}
}

// Registry interns every VarInfo the allocator has seen across the whole
// compilation unit. A var's size and kind are fixed at first sight; every
// later access to the same ID reuses the same *VarInfo.
type Registry struct {
	vars map[string]*VarInfo
}

func NewRegistry() *Registry {
	return &Registry{vars: make(map[string]*VarInfo)}
}

// Lookup returns the VarInfo previously interned for id, if any.
func (r *Registry) Lookup(id string) (*VarInfo, bool) {
	v, ok := r.vars[id]
	return v, ok
}

// intern returns the VarInfo for id, creating it from kind/size on first
// sight. Size and kind of later accesses to the same id are ignored —
// the allocator trusts the classifier to report a stable size per object.
func (r *Registry) intern(kind Kind, id string, size int) *VarInfo {
	if v, ok := r.vars[id]; ok {
		return v
	}
	v := &VarInfo{ID: id, Size: size, Kind: kind}
	r.vars[id] = v
	return v
}

// All returns every interned VarInfo, in no particular order. Intended for
// debug dumps and tests, not for anything order-sensitive.
func (r *Registry) All() []*VarInfo {
	out := make([]*VarInfo, 0, len(r.vars))
	for _, v := range r.vars {
		out = append(out, v)
	}
	return out
}
