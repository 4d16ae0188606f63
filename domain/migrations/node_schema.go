// Package migrations upgrades serialized documents from historical
// schema versions to the current one, one version at a time. Steps
// operate on the untyped decoded form because historical shapes no
// longer match the current entity types.
package migrations

import (
	"pathways-engine/pkg/markup"
)

// invalidContentID is substituted when a rule input's html has no
// matching choice during the v41 to v42 upgrade. Downstream consumers
// treat it like non-matching html.
const invalidContentID = "invalid_content_id"

// nodeStep upgrades a node collection by exactly one schema version.
// Only the v43 to v44 step reads initNodeName; the rest ignore it.
type nodeStep func(nodes map[string]interface{}, initNodeName string) map[string]interface{}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// convertNodesV41ToV42 replaces raw html in rule inputs and solution
// answers of DragAndDropSortInput and ItemSelectionInput with the
// content ids of the matching choices.
func convertNodesV41ToV42(nodes map[string]interface{}, _ string) map[string]interface{} {
	contentIDForHTML := func(html interface{}, choices []interface{}) string {
		for _, choice := range choices {
			choiceMap := asMap(choice)
			if choiceMap["html"] == html {
				id, _ := choiceMap["content_id"].(string)
				return id
			}
		}
		return invalidContentID
	}
	migrateSet := func(value interface{}, choices []interface{}) []interface{} {
		out := make([]interface{}, 0, len(asSlice(value)))
		for _, html := range asSlice(value) {
			out = append(out, contentIDForHTML(html, choices))
		}
		return out
	}
	migrateListOfSets := func(value interface{}, choices []interface{}) []interface{} {
		out := make([]interface{}, 0, len(asSlice(value)))
		for _, set := range asSlice(value) {
			out = append(out, migrateSet(set, choices))
		}
		return out
	}

	for _, node := range nodes {
		interaction := asMap(asMap(node)["interaction"])
		interactionID, _ := interaction["id"].(string)
		if interactionID != "DragAndDropSortInput" && interactionID != "ItemSelectionInput" {
			continue
		}

		choices := asSlice(asMap(asMap(interaction["customization_args"])["choices"])["value"])

		if solution := asMap(interaction["solution"]); solution != nil {
			if interactionID == "ItemSelectionInput" {
				solution["correct_answer"] = migrateSet(solution["correct_answer"], choices)
			} else {
				solution["correct_answer"] = migrateListOfSets(solution["correct_answer"], choices)
			}
		}

		for _, group := range asSlice(interaction["answer_groups"]) {
			for _, spec := range asSlice(asMap(group)["rule_specs"]) {
				specMap := asMap(spec)
				ruleType, _ := specMap["rule_type"].(string)
				inputs := asMap(specMap["inputs"])

				if interactionID == "ItemSelectionInput" {
					inputs["x"] = migrateSet(inputs["x"], choices)
					continue
				}
				switch ruleType {
				case "IsEqualToOrdering",
					"IsEqualToOrderingWithOneItemAtIncorrectPosition":
					inputs["x"] = migrateListOfSets(inputs["x"], choices)
				case "HasElementXAtPositionY":
					inputs["x"] = contentIDForHTML(inputs["x"], choices)
				case "HasElementXBeforeElementY":
					inputs["x"] = contentIDForHTML(inputs["x"], choices)
					inputs["y"] = contentIDForHTML(inputs["y"], choices)
				}
			}
		}
	}
	return nodes
}

// convertNodesV42ToV43 adds the useFractionForDivision customization
// arg to the math expression interactions.
func convertNodesV42ToV43(nodes map[string]interface{}, _ string) map[string]interface{} {
	for _, node := range nodes {
		interaction := asMap(asMap(node)["interaction"])
		switch interaction["id"] {
		case "NumericExpressionInput", "AlgebraicExpressionInput", "MathEquationInput":
			asMap(interaction["customization_args"])["useFractionForDivision"] = map[string]interface{}{
				"value": true,
			}
		}
	}
	return nodes
}

// convertNodesV43ToV44 introduces the card_is_checkpoint flag, set only
// on the initial node.
func convertNodesV43ToV44(nodes map[string]interface{}, initNodeName string) map[string]interface{} {
	for name, node := range nodes {
		asMap(node)["card_is_checkpoint"] = name == initNodeName
	}
	return nodes
}

// convertNodesV44ToV45 introduces the linked_skill_id field.
func convertNodesV44ToV45(nodes map[string]interface{}, _ string) map[string]interface{} {
	for _, node := range nodes {
		asMap(node)["linked_skill_id"] = nil
	}
	return nodes
}

// convertNodesV45ToV46 normalizes written translations of unicode
// customization-arg content: tags are stripped and the data format is
// forced to unicode.
func convertNodesV45ToV46(nodes map[string]interface{}, _ string) map[string]interface{} {
	for _, node := range nodes {
		nodeMap := asMap(node)
		custArgs := asMap(asMap(nodeMap["interaction"])["customization_args"])
		if len(custArgs) == 0 {
			continue
		}
		unicodeContentIDs := map[string]bool{}
		collectSubtitledUnicodeIDs(custArgs, unicodeContentIDs)

		mapping := asMap(asMap(nodeMap["written_translations"])["translations_mapping"])
		for contentID, byLanguage := range mapping {
			if !unicodeContentIDs[contentID] {
				continue
			}
			for _, translation := range asMap(byLanguage) {
				translationMap := asMap(translation)
				translationMap["data_format"] = "unicode"
				if text, ok := translationMap["translation"].(string); ok {
					translationMap["translation"] = markup.StripTags(text)
				}
			}
		}
	}
	return nodes
}

// collectSubtitledUnicodeIDs walks a customization-args value and
// records the content ids of every subtitled-unicode dict, which is
// recognizable by carrying both content_id and unicode_str keys.
func collectSubtitledUnicodeIDs(value interface{}, out map[string]bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		if id, ok := v["content_id"].(string); ok {
			if _, isUnicode := v["unicode_str"]; isUnicode {
				out[id] = true
			}
		}
		for _, inner := range v {
			collectSubtitledUnicodeIDs(inner, out)
		}
	case []interface{}:
		for _, inner := range v {
			collectSubtitledUnicodeIDs(inner, out)
		}
	}
}

// convertNodesV46ToV47 rewrites deprecated svg-diagram tags in every
// html field to image tags.
func convertNodesV46ToV47(nodes map[string]interface{}, _ string) map[string]interface{} {
	return cleanNodeHTML(nodes, markup.ConvertSVGDiagramTagsToImageTags)
}

// convertNodesV47ToV48 repairs incorrectly encoded characters in every
// html field.
func convertNodesV47ToV48(nodes map[string]interface{}, _ string) map[string]interface{} {
	return cleanNodeHTML(nodes, markup.FixEncodedChars)
}

// convertNodesV48ToV49 adds the requireNonnegativeInput customization
// arg to NumericInput.
func convertNodesV48ToV49(nodes map[string]interface{}, _ string) map[string]interface{} {
	for _, node := range nodes {
		interaction := asMap(asMap(node)["interaction"])
		if interaction["id"] == "NumericInput" {
			asMap(interaction["customization_args"])["requireNonnegativeInput"] = map[string]interface{}{
				"value": false,
			}
		}
	}
	return nodes
}

func cleanNodeHTML(nodes map[string]interface{}, cleaner markup.Cleaner) map[string]interface{} {
	for _, node := range nodes {
		nodeMap := asMap(node)
		if len(asMap(asMap(nodeMap["interaction"])["customization_args"])) == 0 {
			continue
		}
		applyCleaner(nodeMap, cleaner)
	}
	return nodes
}

// applyCleaner rewrites every html field reachable from value: any
// subtitled-html dict (content_id plus html keys) and any written
// translation stored in html format.
func applyCleaner(value interface{}, cleaner markup.Cleaner) {
	switch v := value.(type) {
	case map[string]interface{}:
		if _, subtitled := v["content_id"]; subtitled {
			if html, ok := v["html"].(string); ok {
				v["html"] = cleaner(html)
			}
		}
		if v["data_format"] == "html" {
			if text, ok := v["translation"].(string); ok {
				v["translation"] = cleaner(text)
			}
		}
		for _, inner := range v {
			applyCleaner(inner, cleaner)
		}
	case []interface{}:
		for _, inner := range v {
			applyCleaner(inner, cleaner)
		}
	}
}
