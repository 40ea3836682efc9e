package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/custody/errors"
)

// itemIter merges the items of a cache-wrap with the iterator of the
// store below it. Cached items shadow the parent entries with the same key
// and deleted items hide them.
type itemIter struct {
	items     []btree.Item
	parent    Iterator
	ascending bool

	// next parent entry, buffered so it can be compared with our items
	pkey, pvalue []byte
	pvalid       bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []btree.Item, parent Iterator, ascending bool) (*itemIter, error) {
	iter := &itemIter{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
	if err := iter.advanceParent(); err != nil {
		parent.Release()
		return nil, err
	}
	return iter, nil
}

func (i *itemIter) advanceParent() error {
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.pkey, i.pvalue, i.pvalid = key, value, true
	case errors.ErrIteratorDone.Is(err):
		i.pkey, i.pvalue, i.pvalid = nil, nil, false
	default:
		return err
	}
	return nil
}

// Next returns the next entry in iteration order.
func (i *itemIter) Next() (key, value []byte, err error) {
	for {
		if len(i.items) == 0 {
			if !i.pvalid {
				return nil, nil, errors.ErrIteratorDone
			}
			key, value = i.pkey, i.pvalue
			return key, value, i.advanceParent()
		}

		own := i.items[0].(keyer).Key()
		if i.pvalid {
			cmp := bytes.Compare(i.pkey, own)
			if !i.ascending {
				cmp = -cmp
			}
			if cmp < 0 {
				key, value = i.pkey, i.pvalue
				return key, value, i.advanceParent()
			}
			if cmp == 0 {
				// Our item overwrites the parent entry.
				if err := i.advanceParent(); err != nil {
					return nil, nil, err
				}
			}
		}

		item := i.items[0]
		i.items = i.items[1:]
		if set, ok := item.(setItem); ok {
			return set.key, set.value, nil
		}
	}
}

// Release releases the Iterator.
func (i *itemIter) Release() {
	i.items = nil
	i.parent.Release()
}
