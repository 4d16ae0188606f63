package entities

// SubtitledHTML is an HTML block tied to a content id so that
// translations and voiceovers can reference it.
type SubtitledHTML struct {
	ContentID string `json:"content_id" yaml:"content_id" mapstructure:"content_id"`
	HTML      string `json:"html" yaml:"html" mapstructure:"html"`
}

// Voiceover is a recorded audio track for one content id in one language.
type Voiceover struct {
	Filename      string  `json:"filename" yaml:"filename" mapstructure:"filename"`
	FileSizeBytes int     `json:"file_size_bytes" yaml:"file_size_bytes" mapstructure:"file_size_bytes"`
	NeedsUpdate   bool    `json:"needs_update" yaml:"needs_update" mapstructure:"needs_update"`
	DurationSecs  float64 `json:"duration_secs" yaml:"duration_secs" mapstructure:"duration_secs"`
}

// RecordedVoiceovers maps content id -> language code -> voiceover.
type RecordedVoiceovers struct {
	VoiceoversMapping map[string]map[string]Voiceover `json:"voiceovers_mapping" yaml:"voiceovers_mapping" mapstructure:"voiceovers_mapping"`
}

// NewRecordedVoiceovers returns an empty mapping covering the given
// content ids.
func NewRecordedVoiceovers(contentIDs ...string) RecordedVoiceovers {
	mapping := make(map[string]map[string]Voiceover, len(contentIDs))
	for _, id := range contentIDs {
		mapping[id] = map[string]Voiceover{}
	}
	return RecordedVoiceovers{VoiceoversMapping: mapping}
}

// DeepCopy returns an independent copy of the voiceover mapping.
func (rv RecordedVoiceovers) DeepCopy() RecordedVoiceovers {
	mapping := make(map[string]map[string]Voiceover, len(rv.VoiceoversMapping))
	for contentID, byLanguage := range rv.VoiceoversMapping {
		inner := make(map[string]Voiceover, len(byLanguage))
		for lang, v := range byLanguage {
			inner[lang] = v
		}
		mapping[contentID] = inner
	}
	return RecordedVoiceovers{VoiceoversMapping: mapping}
}

// Translation data formats.
const (
	DataFormatHTML              = "html"
	DataFormatUnicode           = "unicode"
	DataFormatSetOfNormalized   = "set_of_normalized_string"
	DataFormatSetOfUnicode      = "set_of_unicode_string"
)

// WrittenTranslation is one translated rendering of a content id.
type WrittenTranslation struct {
	DataFormat  string      `json:"data_format" yaml:"data_format" mapstructure:"data_format"`
	Translation interface{} `json:"translation" yaml:"translation" mapstructure:"translation"`
	NeedsUpdate bool        `json:"needs_update" yaml:"needs_update" mapstructure:"needs_update"`
}

// WrittenTranslations maps content id -> language code -> translation.
type WrittenTranslations struct {
	TranslationsMapping map[string]map[string]WrittenTranslation `json:"translations_mapping" yaml:"translations_mapping" mapstructure:"translations_mapping"`
}

// NewWrittenTranslations returns an empty mapping covering the given
// content ids.
func NewWrittenTranslations(contentIDs ...string) WrittenTranslations {
	mapping := make(map[string]map[string]WrittenTranslation, len(contentIDs))
	for _, id := range contentIDs {
		mapping[id] = map[string]WrittenTranslation{}
	}
	return WrittenTranslations{TranslationsMapping: mapping}
}

// DeepCopy returns an independent copy of the translation mapping.
func (wt WrittenTranslations) DeepCopy() WrittenTranslations {
	mapping := make(map[string]map[string]WrittenTranslation, len(wt.TranslationsMapping))
	for contentID, byLanguage := range wt.TranslationsMapping {
		inner := make(map[string]WrittenTranslation, len(byLanguage))
		for lang, t := range byLanguage {
			t.Translation = deepCopyValue(t.Translation)
			inner[lang] = t
		}
		mapping[contentID] = inner
	}
	return WrittenTranslations{TranslationsMapping: mapping}
}

// Add records a translation for the given content id and language.
func (wt *WrittenTranslations) Add(contentID, languageCode, dataFormat string, translation interface{}) {
	if wt.TranslationsMapping == nil {
		wt.TranslationsMapping = map[string]map[string]WrittenTranslation{}
	}
	if wt.TranslationsMapping[contentID] == nil {
		wt.TranslationsMapping[contentID] = map[string]WrittenTranslation{}
	}
	wt.TranslationsMapping[contentID][languageCode] = WrittenTranslation{
		DataFormat:  dataFormat,
		Translation: translation,
	}
}

// MarkNeedingUpdate flags the translation of contentID in languageCode,
// if present.
func (wt *WrittenTranslations) MarkNeedingUpdate(contentID, languageCode string) {
	byLanguage, ok := wt.TranslationsMapping[contentID]
	if !ok {
		return
	}
	if t, ok := byLanguage[languageCode]; ok {
		t.NeedsUpdate = true
		byLanguage[languageCode] = t
	}
}

// MarkAllNeedingUpdate flags every translation of contentID.
func (wt *WrittenTranslations) MarkAllNeedingUpdate(contentID string) {
	for lang := range wt.TranslationsMapping[contentID] {
		wt.MarkNeedingUpdate(contentID, lang)
	}
}

// CountsByLanguage returns, per language, how many content ids carry an
// up-to-date translation.
func (wt WrittenTranslations) CountsByLanguage() map[string]int {
	counts := map[string]int{}
	for _, byLanguage := range wt.TranslationsMapping {
		for lang, t := range byLanguage {
			if !t.NeedsUpdate {
				counts[lang]++
			}
		}
	}
	return counts
}

// deepCopyValue copies nested map/slice values so that copies of nodes
// never alias the originals. Scalars are returned as-is.
func deepCopyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, inner := range typed {
			out[k] = deepCopyValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, inner := range typed {
			out[i] = deepCopyValue(inner)
		}
		return out
	default:
		return v
	}
}
