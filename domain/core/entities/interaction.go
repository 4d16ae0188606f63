package entities

// Interaction type ids that signal end-of-document. A node whose
// interaction carries one of these ids is a terminal node.
var terminalInteractionIDs = map[string]struct{}{
	"EndExploration": {},
}

// Outcome is the edge descriptor attached to an answer group or to the
// default branch of an interaction. Edges are name-string dest fields,
// never pointers, so nodes stay independently renameable.
type Outcome struct {
	Dest                    string        `json:"dest" yaml:"dest" mapstructure:"dest"`
	Feedback                SubtitledHTML `json:"feedback" yaml:"feedback" mapstructure:"feedback"`
	LabelledAsCorrect       bool          `json:"labelled_as_correct" yaml:"labelled_as_correct" mapstructure:"labelled_as_correct"`
	ParamChanges            []ParamChange `json:"param_changes" yaml:"param_changes" mapstructure:"param_changes"`
	RefresherDocumentID     *string       `json:"refresher_document_id" yaml:"refresher_document_id" mapstructure:"refresher_document_id"`
	MissingPrerequisiteSkillID *string    `json:"missing_prerequisite_skill_id" yaml:"missing_prerequisite_skill_id" mapstructure:"missing_prerequisite_skill_id"`
}

// DeepCopy returns an independent copy of the outcome.
func (o *Outcome) DeepCopy() *Outcome {
	if o == nil {
		return nil
	}
	out := *o
	out.ParamChanges = CopyParamChanges(o.ParamChanges)
	out.RefresherDocumentID = copyStringPtr(o.RefresherDocumentID)
	out.MissingPrerequisiteSkillID = copyStringPtr(o.MissingPrerequisiteSkillID)
	return &out
}

// RuleSpec is one classification rule inside an answer group.
type RuleSpec struct {
	RuleType string                 `json:"rule_type" yaml:"rule_type" mapstructure:"rule_type"`
	Inputs   map[string]interface{} `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
}

// AnswerGroup pairs classification rules with the outcome taken when a
// learner response matches them.
type AnswerGroup struct {
	RuleSpecs                  []RuleSpec    `json:"rule_specs" yaml:"rule_specs" mapstructure:"rule_specs"`
	Outcome                    Outcome       `json:"outcome" yaml:"outcome" mapstructure:"outcome"`
	TrainingData               []interface{} `json:"training_data" yaml:"training_data" mapstructure:"training_data"`
	TaggedSkillMisconceptionID *string       `json:"tagged_skill_misconception_id" yaml:"tagged_skill_misconception_id" mapstructure:"tagged_skill_misconception_id"`
}

// DeepCopy returns an independent copy of the answer group.
func (ag AnswerGroup) DeepCopy() AnswerGroup {
	specs := make([]RuleSpec, len(ag.RuleSpecs))
	for i, rs := range ag.RuleSpecs {
		inputs := make(map[string]interface{}, len(rs.Inputs))
		for k, v := range rs.Inputs {
			inputs[k] = deepCopyValue(v)
		}
		specs[i] = RuleSpec{RuleType: rs.RuleType, Inputs: inputs}
	}
	ag.RuleSpecs = specs
	ag.Outcome = *ag.Outcome.DeepCopy()
	if ag.TrainingData != nil {
		ag.TrainingData = deepCopyValue(ag.TrainingData).([]interface{})
	}
	ag.TaggedSkillMisconceptionID = copyStringPtr(ag.TaggedSkillMisconceptionID)
	return ag
}

// Hint is one SubtitledHTML hint shown on request.
type Hint struct {
	HintContent SubtitledHTML `json:"hint_content" yaml:"hint_content" mapstructure:"hint_content"`
}

// Solution is the worked answer for an interaction, with an explanation.
type Solution struct {
	AnswerIsExclusive bool          `json:"answer_is_exclusive" yaml:"answer_is_exclusive" mapstructure:"answer_is_exclusive"`
	CorrectAnswer     interface{}   `json:"correct_answer" yaml:"correct_answer" mapstructure:"correct_answer"`
	Explanation       SubtitledHTML `json:"explanation" yaml:"explanation" mapstructure:"explanation"`
}

// DeepCopy returns an independent copy of the solution.
func (s *Solution) DeepCopy() *Solution {
	if s == nil {
		return nil
	}
	out := *s
	out.CorrectAnswer = deepCopyValue(s.CorrectAnswer)
	return &out
}

// Interaction describes how a node collects and classifies a learner
// response. An empty id means no interaction has been chosen yet.
type Interaction struct {
	ID                           string                 `json:"id" yaml:"id" mapstructure:"id"`
	CustomizationArgs            map[string]interface{} `json:"customization_args" yaml:"customization_args" mapstructure:"customization_args"`
	AnswerGroups                 []AnswerGroup          `json:"answer_groups" yaml:"answer_groups" mapstructure:"answer_groups"`
	DefaultOutcome               *Outcome               `json:"default_outcome" yaml:"default_outcome" mapstructure:"default_outcome"`
	ConfirmedUnclassifiedAnswers []interface{}          `json:"confirmed_unclassified_answers" yaml:"confirmed_unclassified_answers" mapstructure:"confirmed_unclassified_answers"`
	Hints                        []Hint                 `json:"hints" yaml:"hints" mapstructure:"hints"`
	Solution                     *Solution              `json:"solution" yaml:"solution" mapstructure:"solution"`
}

// IsTerminal reports whether the interaction signals end-of-document.
func (in Interaction) IsTerminal() bool {
	_, ok := terminalInteractionIDs[in.ID]
	return ok
}

// AllOutcomes returns every outcome attached to the interaction: one
// per answer group, plus the default outcome if present.
func (in *Interaction) AllOutcomes() []*Outcome {
	outcomes := make([]*Outcome, 0, len(in.AnswerGroups)+1)
	for i := range in.AnswerGroups {
		outcomes = append(outcomes, &in.AnswerGroups[i].Outcome)
	}
	if in.DefaultOutcome != nil {
		outcomes = append(outcomes, in.DefaultOutcome)
	}
	return outcomes
}

// DeepCopy returns an independent copy of the interaction.
func (in Interaction) DeepCopy() Interaction {
	args := make(map[string]interface{}, len(in.CustomizationArgs))
	for k, v := range in.CustomizationArgs {
		args[k] = deepCopyValue(v)
	}
	in.CustomizationArgs = args

	groups := make([]AnswerGroup, len(in.AnswerGroups))
	for i, ag := range in.AnswerGroups {
		groups[i] = ag.DeepCopy()
	}
	in.AnswerGroups = groups

	in.DefaultOutcome = in.DefaultOutcome.DeepCopy()
	if in.ConfirmedUnclassifiedAnswers != nil {
		in.ConfirmedUnclassifiedAnswers = deepCopyValue(
			in.ConfirmedUnclassifiedAnswers).([]interface{})
	}
	hints := make([]Hint, len(in.Hints))
	copy(hints, in.Hints)
	in.Hints = hints
	in.Solution = in.Solution.DeepCopy()
	return in
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
