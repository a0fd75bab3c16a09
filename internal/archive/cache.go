package archive

import (
	"sync"

	"github.com/chronos-tachyon/assert"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chronos-tachyon/prefixcode/token"
)

// tikTokenCacheSize bounds the number of loaded BPE vocabularies kept in
// memory.  Each one holds a rank table of around 100k entries.
const tikTokenCacheSize = 4

var (
	tikTokenOnce  sync.Once
	tikTokenCache *lru.Cache[string, *token.TikToken]
)

// loadTikToken returns the named tiktoken tokenizer, loading it on first use.
func loadTikToken(name string) (*token.TikToken, error) {
	if name == "" {
		name = token.DefaultBPEEncoding
	}

	tikTokenOnce.Do(func() {
		var err error
		tikTokenCache, err = lru.New[string, *token.TikToken](tikTokenCacheSize)
		assert.Assertf(err == nil, "lru.New(%d) failed: %v", tikTokenCacheSize, err)
	})
	if tk, found := tikTokenCache.Get(name); found {
		return tk, nil
	}

	tk, err := token.NewTikToken(name)
	if err != nil {
		return nil, err
	}
	tikTokenCache.Add(name, tk)
	return tk, nil
}
