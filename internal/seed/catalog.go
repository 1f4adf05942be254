package seed

import (
	"fmt"

	"samplepedia/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInTags is the starter tag vocabulary for the catalogue.
var BuiltInTags = []string{
	"ransomware", "trojan", "stealer", "loader", "rat",
	"wiper", "banker", "botnet", "apt", "cryptominer",
	"dropper", "keylogger", "rootkit", "worm",
}

// BuiltInTools is the starter tool vocabulary for the catalogue.
var BuiltInTools = []string{
	"ghidra", "ida", "x64dbg", "radare2", "wireshark",
	"procmon", "dnspy", "cutter", "binary ninja", "pestudio",
	"volatility", "frida", "yara",
}

// GalleryImageCount is how many picsum artwork entries Catalog seeds.
const GalleryImageCount = 12

// Catalog seeds the permanent label vocabulary and the artwork gallery.
// Idempotent: labels upsert on name, gallery images upsert on URL.
func Catalog(db *gorm.DB) error {
	names := make([]string, 0, len(BuiltInTags)+len(BuiltInTools))
	names = append(names, BuiltInTags...)
	names = append(names, BuiltInTools...)

	for _, name := range names {
		label := models.Label{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&label).Error; err != nil {
			return fmt.Errorf("seed built-in label %s: %w", name, err)
		}
	}

	for i := 1; i <= GalleryImageCount; i++ {
		image := models.SampleImage{
			URL: fmt.Sprintf("https://picsum.photos/seed/samplepedia-%d/600/400", i),
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).Create(&image).Error; err != nil {
			return fmt.Errorf("seed gallery image %d: %w", i, err)
		}
	}

	return nil
}
