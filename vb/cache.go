package vb

import "fmt"

// The V810 has a 1 KiB direct mapped instruction cache, 128 lines of 8 bytes
// split into two 4 byte subblocks. Fetches always go to the bus, the cache
// only keeps statistics for the debugger.
const (
	cacheEntries   = 128
	cacheIndexMask = cacheEntries - 1
)

type CacheResult int

const (
	CacheDisabled CacheResult = iota
	CacheHit
	CacheMiss
)

func (r CacheResult) String() string {
	switch r {
	case CacheDisabled:
		return "Disabled"
	case CacheHit:
		return "Hit"
	case CacheMiss:
		return "Miss"
	}
	return fmt.Sprintf("CacheResult(%d)", int(r))
}

type CacheEntry struct {
	Tag           uint32
	BaseAddress   uint32
	SubblockValid [2]bool
}

type Cache struct {
	entries [cacheEntries]CacheEntry
	hits    uint64
	misses  uint64
	enabled bool
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) String() string {
	return fmt.Sprintf("enabled=%v hits=%d misses=%d", c.enabled, c.hits, c.misses)
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

func (c *Cache) Hits() uint64 {
	return c.hits
}

func (c *Cache) Misses() uint64 {
	return c.misses
}

// Entry returns a copy of line i.
func (c *Cache) Entry(i int) CacheEntry {
	return c.entries[i&cacheIndexMask]
}

func (c *Cache) setEnabled(enabled bool) {
	c.enabled = enabled
}

// access classifies a fetch and updates the statistics.
func (c *Cache) access(address uint32) CacheResult {
	if !c.enabled {
		return CacheDisabled
	}
	e := &c.entries[(address>>3)&cacheIndexMask]
	tag := address >> 10
	subblock := (address >> 2) & 1
	if e.Tag == tag && e.SubblockValid[subblock] {
		c.hits++
		return CacheHit
	}
	c.misses++
	if e.Tag != tag {
		e.SubblockValid = [2]bool{}
	}
	e.Tag = tag
	e.BaseAddress = address &^ 7
	e.SubblockValid[subblock] = true
	return CacheMiss
}

// clear invalidates count lines starting at line start (CHCW ICC).
func (c *Cache) clear(start, count int) {
	for i := 0; i < count && start+i < cacheEntries; i++ {
		c.entries[start+i].SubblockValid = [2]bool{}
	}
}
