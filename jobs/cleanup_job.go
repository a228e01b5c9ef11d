package jobs

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

const uploadDir = "uploads"

// Import files are deleted right after processing; anything still here is a
// leftover from a crashed request.
const uploadRetention = 24 * time.Hour

func CleanupUploads() {
	log.Println("Running job: CleanupUploads...")

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading upload directory: %v", err)
		}
		return
	}

	cutoff := time.Now().Add(-uploadRetention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(uploadDir, entry.Name())); err != nil {
			log.Printf("Error removing stale upload %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("Removed %d stale upload(s).", removed)
	}
}
