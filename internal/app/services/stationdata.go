package services

// defaultNicknames maps colloquial station names to ids. The table covers the
// handful of well-known shorthands; everything else goes through the fuzzy
// path.
var defaultNicknames = map[string]string{
	"北車":  "1000", // 臺北
	"台北車": "1000",
	"板車":  "1020", // 板橋
	"中車":  "3300", // 臺中
	"高火":  "4400", // 高雄
}

// defaultCorrections maps recurring misspellings to canonical names. Applied
// after suffix stripping, before the exact-match lookup.
var defaultCorrections = map[string]string{
	"汐只": "汐止",
	"夠份": "九份",
	"彰華": "彰化",
}
