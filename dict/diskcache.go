package dict

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var diskCacheNamespace = uuid.MustParse("6f1c9e52-3c1e-4d8a-9a57-0d2b6f3b1f41")

// DiskCache keeps dictionary cache entries between runs, one JSON file per
// entry.
type DiskCache struct {
	fs         afero.Fs
	StorageDir string
}

func NewDiskCache(fs afero.Fs, dir string) (DiskCache, error) {
	c := DiskCache{fs: fs, StorageDir: dir}
	err := fs.MkdirAll(c.CacheDir(), 0755)
	if err != nil {
		return c, fmt.Errorf("DiskCache MkdirAll %s", err.Error())
	}
	return c, nil
}

func (c DiskCache) CacheDir() string {
	return path.Join(c.StorageDir, "dictcache")
}

func (c DiskCache) file(e CachedEntry) string {
	key := strconv.Itoa(e.LanguageID) + "\x00" + e.Term + "\x00" + e.URL
	return path.Join(c.CacheDir(), uuid.NewSHA1(diskCacheNamespace, []byte(key)).String()+".json")
}

// Load restores every stored entry into cache and removes the files of
// expired ones.
func (c DiskCache) Load(cache *DictionaryCacheManager) (int, error) {
	infos, err := afero.ReadDir(c.fs, c.CacheDir())
	if err != nil {
		return 0, fmt.Errorf("DiskCache ReadDir %s", err.Error())
	}
	n := 0
	for _, info := range infos {
		if info.IsDir() || path.Ext(info.Name()) != ".json" {
			continue
		}
		file := path.Join(c.CacheDir(), info.Name())
		data, err := afero.ReadFile(c.fs, file)
		if err != nil {
			return n, fmt.Errorf("DiskCache read file %s %s", file, err.Error())
		}
		var e CachedEntry
		if err := json.Unmarshal(data, &e); err != nil || !cache.Restore(e) {
			c.fs.Remove(file)
			continue
		}
		n++
	}
	return n, nil
}

// Save writes the live entries of cache.
func (c DiskCache) Save(cache *DictionaryCacheManager) error {
	for _, e := range cache.Entries() {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("DiskCache Save json Marshal %s", err.Error())
		}
		file := c.file(e)
		if err := afero.WriteFile(c.fs, file, data, 0644); err != nil {
			return fmt.Errorf("DiskCache WriteFile %s %s", file, err.Error())
		}
	}
	return nil
}
