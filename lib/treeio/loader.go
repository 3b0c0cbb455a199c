package treeio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/safeopen"

	"github.com/benz9527/xrbt/lib/infra"
	"github.com/benz9527/xrbt/lib/tree"
)

var (
	ErrTreeIOBadCount   = errors.New("[treeio] invalid key count")
	ErrTreeIOShortInput = errors.New("[treeio] fewer keys than the declared count")
	ErrTreeIOBadKey     = errors.New("[treeio] invalid key")
	ErrTreeIOBadRange   = errors.New("[treeio] invalid key range")
	ErrTreeIOBadSize    = errors.New("[treeio] invalid generate size")
	ErrTreeIONilTree    = errors.New("[treeio] nil tree")
)

// Load reads whitespace separated integers from r. The first one is the
// number of keys N, the next N are inserted into t. Tokens after the
// N-th key are ignored. Keys inserted before an error stay in t.
func Load(t tree.RBTree, r io.Reader) (int, error) {
	if t == nil {
		return 0, ErrTreeIONilTree
	}

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: missing count", ErrTreeIOBadCount)
	}
	count, err := strconv.ParseInt(scanner.Text(), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTreeIOBadCount, err)
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: %d", ErrTreeIOBadCount, count)
	}

	loaded := 0
	for ; int64(loaded) < count; loaded++ {
		if !scanner.Scan() {
			if err = scanner.Err(); err != nil {
				return loaded, err
			}
			return loaded, fmt.Errorf("%w: %d of %d keys", ErrTreeIOShortInput, loaded, count)
		}
		key, err := strconv.ParseInt(scanner.Text(), 10, 32)
		if err != nil {
			return loaded, fmt.Errorf("%w #%d: %w", ErrTreeIOBadKey, loaded, err)
		}
		t.Insert(int32(key))
	}
	return loaded, nil
}

// LoadFile loads the file name that must be located beneath dir.
func LoadFile(t tree.RBTree, dir, name string) (int, error) {
	f, err := safeopen.OpenBeneath(dir, name)
	if err != nil {
		return 0, infra.WrapErrorStackWithMessage(err, "[treeio] open "+name)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(t, f)
}
