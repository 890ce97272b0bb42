// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"github.com/pkg/errors"
)

// MaxRefSlots 参考表的最大容量
const MaxRefSlots = 16

// UnresolvedIndex 未能解析的分类索引
const UnresolvedIndex = -1

// RefSlot 参考表中的一项，只在一次解码调用期间有效
type RefSlot struct {
	Index    int
	Buffer   PictureBuffer // 借用，不拥有
	POC      int32
	LongTerm bool
}

// RefTable 参考表和三个分类索引列表
type RefTable struct {
	Slots        []RefSlot
	StCurrBefore [MaxRefSlots]int8
	StCurrAfter  [MaxRefSlots]int8
	LtCurr       [MaxRefSlots]int8
}

// Len 参考图像数
func (t *RefTable) Len() int { return len(t.Slots) }

// ResolveRefs 从 DPB 的全部图像构建参考表，并按 POC 把分类列表映射为参考表索引。
// maxSlots 超出 [1, MaxRefSlots] 时使用 MaxRefSlots。
func ResolveRefs(pics []*Picture, sets RefPicSets, maxSlots int) (*RefTable, error) {
	if maxSlots <= 0 || maxSlots > MaxRefSlots {
		maxSlots = MaxRefSlots
	}

	t := &RefTable{}
	for _, pic := range pics {
		if pic == nil || !pic.Ref {
			continue
		}
		if len(t.Slots) >= maxSlots {
			return nil, errors.WithStack(ErrTooManyRefs)
		}
		t.Slots = append(t.Slots, RefSlot{
			Index:    len(t.Slots),
			Buffer:   pic.buffer,
			POC:      pic.POC,
			LongTerm: pic.LongTerm,
		})
	}

	t.resolve(&t.StCurrBefore, sets.StCurrBefore)
	t.resolve(&t.StCurrAfter, sets.StCurrAfter)
	t.resolve(&t.LtCurr, sets.LtCurr)
	return t, nil
}

// resolve 位置映射：第 i 个输出取分类列表中第 i 个非空图像，
// 而不是参考表的第 i 项
func (t *RefTable) resolve(idx *[MaxRefSlots]int8, list []*Picture) {
	for i := range idx {
		idx[i] = UnresolvedIndex
	}

	j := 0
	for i := range t.Slots {
		var other *Picture
		for other == nil && j < len(list) {
			other = list[j]
			j++
		}
		if other == nil {
			continue
		}
		for k := range t.Slots {
			if t.Slots[k].POC == other.POC {
				idx[i] = int8(t.Slots[k].Index)
				break
			}
		}
	}
}
