package chart

import (
	"sync"
	"time"
)

type imageCacheEntry struct {
	createdAt time.Time
	image     []byte
}

const imageCacheTTL = 60 * time.Second

var (
	imageCache   = map[string]imageCacheEntry{}
	imageCacheMu sync.Mutex
)

func cacheGet(key string) ([]byte, bool) {
	imageCacheMu.Lock()
	defer imageCacheMu.Unlock()
	if entry, ok := imageCache[key]; ok {
		if time.Now().Before(entry.createdAt.Add(imageCacheTTL)) {
			img := make([]byte, len(entry.image))
			copy(img, entry.image)
			return img, true
		}
	}
	return nil, false
}

func cacheSet(key string, img []byte) {
	imageCacheMu.Lock()
	imageCache[key] = imageCacheEntry{createdAt: time.Now(), image: img}
	imageCacheMu.Unlock()
}
