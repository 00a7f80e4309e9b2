package model

import (
    "fmt"
    "strconv"
    "strings"
)

// Category tags an item with the listing board it belongs to.  Exactly
// two categories exist and every item code starts with the category
// letter.  Display labels for the two boards come from the show
// profile, not from this package.
type Category string

const (
    CategoryN Category = "N"
    CategoryS Category = "S"
)

// Valid reports whether the category is one of the two known tags.
func (c Category) Valid() bool {
    return c == CategoryN || c == CategoryS
}

// ParseCategory normalises a single-letter category tag, accepting
// either case.
func ParseCategory(raw string) (Category, error) {
    c := Category(strings.ToUpper(strings.TrimSpace(raw)))
    if !c.Valid() {
        return "", fmt.Errorf("unknown category %q", raw)
    }
    return c, nil
}

// Item describes one claimable catalog entry.  Identity (category +
// number, serialized as the 4-character code) is immutable once the
// item is created; only the listing reference changes afterwards.
// Items are created by asset ingestion and removed only by a full
// ledger wipe.
//
// Fields:
//  Code        – canonical code, category letter + zero-padded 3-digit number.
//  Category    – category tag (N or S).
//  Number      – positive sequence number within the category.
//  WMFilename  – watermarked asset filename.
//  WMURL       – fetchable location of the watermarked asset.
//  RawFilename – raw asset filename.
//  RawURL      – fetchable location of the raw asset.
//  ListingID   – opaque handle of the current public listing, "" when unlisted.
type Item struct {
    Code        string   // items.item_code (primary key)
    Category    Category // items.category
    Number      int      // items.number
    WMFilename  string   // items.wm_filename
    WMURL       string   // items.wm_url
    RawFilename string   // items.raw_filename
    RawURL      string   // items.raw_url
    ListingID   string   // items.listing_id ("" = unlisted)
}

// MakeItemCode builds the canonical code for a category and sequence
// number, e.g. MakeItemCode(CategoryN, 7) == "N007".
func MakeItemCode(cat Category, number int) string {
    return fmt.Sprintf("%s%03d", cat, number)
}

// ParseItemCode parses operator input such as "N001" or "s42" and
// re-canonicalises it.  Sequence numbers run from 1 to 999.
func ParseItemCode(raw string) (Category, int, error) {
    s := strings.TrimSpace(raw)
    if len(s) < 2 || len(s) > 4 {
        return "", 0, fmt.Errorf("bad item code %q", raw)
    }
    cat, err := ParseCategory(s[:1])
    if err != nil {
        return "", 0, fmt.Errorf("bad item code %q", raw)
    }
    n, err := strconv.Atoi(s[1:])
    if err != nil || n < 1 || n > 999 {
        return "", 0, fmt.Errorf("bad item code %q", raw)
    }
    return cat, n, nil
}
