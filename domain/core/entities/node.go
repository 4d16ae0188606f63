package entities

// Default content id for a node's main content block.
const ContentIDContent = "content"

// DefaultOutcomeContentID is the content id of the default branch
// feedback.
const DefaultOutcomeContentID = "default_outcome"

// Node is one vertex of the document graph: a single screen/step with
// its content, interaction and translation assets. The node's name is
// the map key held by the owning document, not a field here, so renames
// stay a single-owner concern.
type Node struct {
	Content              SubtitledHTML       `json:"content" yaml:"content" mapstructure:"content"`
	ParamChanges         []ParamChange       `json:"param_changes" yaml:"param_changes" mapstructure:"param_changes"`
	Interaction          Interaction         `json:"interaction" yaml:"interaction" mapstructure:"interaction"`
	RecordedVoiceovers   RecordedVoiceovers  `json:"recorded_voiceovers" yaml:"recorded_voiceovers" mapstructure:"recorded_voiceovers"`
	WrittenTranslations  WrittenTranslations `json:"written_translations" yaml:"written_translations" mapstructure:"written_translations"`
	SolicitAnswerDetails bool                `json:"solicit_answer_details" yaml:"solicit_answer_details" mapstructure:"solicit_answer_details"`
	CardIsCheckpoint     bool                `json:"card_is_checkpoint" yaml:"card_is_checkpoint" mapstructure:"card_is_checkpoint"`
	NextContentIDIndex   int                 `json:"next_content_id_index" yaml:"next_content_id_index" mapstructure:"next_content_id_index"`
	LinkedSkillID        *string             `json:"linked_skill_id" yaml:"linked_skill_id" mapstructure:"linked_skill_id"`
}

// NewDefaultNode returns a fresh node whose default outcome loops back
// to the node itself. The initial node of a document starts out as a
// checkpoint.
func NewDefaultNode(name string, isInitial bool) *Node {
	return &Node{
		Content: SubtitledHTML{ContentID: ContentIDContent, HTML: ""},
		Interaction: Interaction{
			CustomizationArgs: map[string]interface{}{},
			AnswerGroups:      []AnswerGroup{},
			DefaultOutcome: &Outcome{
				Dest:     name,
				Feedback: SubtitledHTML{ContentID: DefaultOutcomeContentID, HTML: ""},
			},
			ConfirmedUnclassifiedAnswers: []interface{}{},
			Hints:                        []Hint{},
		},
		RecordedVoiceovers:  NewRecordedVoiceovers(ContentIDContent, DefaultOutcomeContentID),
		WrittenTranslations: NewWrittenTranslations(ContentIDContent, DefaultOutcomeContentID),
		CardIsCheckpoint:    isInitial,
		NextContentIDIndex:  0,
	}
}

// DeepCopy returns an independent copy of the node.
func (n *Node) DeepCopy() *Node {
	out := *n
	out.ParamChanges = CopyParamChanges(n.ParamChanges)
	out.Interaction = n.Interaction.DeepCopy()
	out.RecordedVoiceovers = n.RecordedVoiceovers.DeepCopy()
	out.WrittenTranslations = n.WrittenTranslations.DeepCopy()
	out.LinkedSkillID = copyStringPtr(n.LinkedSkillID)
	return &out
}

// AllHTML returns every HTML string carried by the node: the content
// block, answer group feedback, default outcome feedback, hints and the
// solution explanation.
func (n *Node) AllHTML() []string {
	html := []string{n.Content.HTML}
	for _, group := range n.Interaction.AnswerGroups {
		html = append(html, group.Outcome.Feedback.HTML)
	}
	if n.Interaction.DefaultOutcome != nil {
		html = append(html, n.Interaction.DefaultOutcome.Feedback.HTML)
	}
	for _, hint := range n.Interaction.Hints {
		html = append(html, hint.HintContent.HTML)
	}
	if n.Interaction.Solution != nil {
		html = append(html, n.Interaction.Solution.Explanation.HTML)
	}
	return html
}

// TranslatableContentCount returns how many distinct content ids the
// node exposes for translation.
func (n *Node) TranslatableContentCount() int {
	return len(n.WrittenTranslations.TranslationsMapping)
}

// TranslationCounts returns, per language, the number of up-to-date
// translations on this node.
func (n *Node) TranslationCounts() map[string]int {
	return n.WrittenTranslations.CountsByLanguage()
}

// CanUndergoClassification reports whether the node has answer groups
// carrying training data, which makes it eligible for the response
// classifier.
func (n *Node) CanUndergoClassification() bool {
	for _, group := range n.Interaction.AnswerGroups {
		if len(group.TrainingData) > 0 {
			return true
		}
	}
	return false
}

// TrainingData returns the per-answer-group training data with the
// group index attached, used to detect answer-group drift between
// versions.
func (n *Node) TrainingData() []map[string]interface{} {
	var data []map[string]interface{}
	for i, group := range n.Interaction.AnswerGroups {
		if len(group.TrainingData) == 0 {
			continue
		}
		data = append(data, map[string]interface{}{
			"answer_group_index": i,
			"answers":            group.TrainingData,
		})
	}
	return data
}
