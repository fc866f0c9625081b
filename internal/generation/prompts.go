package generation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/providers/text"
)

const (
	podcastScriptStyle = "conversational podcast"
	noDataSources      = "General analysis"
)

func scriptPrompt(topic string, seconds int, style, audience, locale string) text.Prompt {
	system := fmt.Sprintf("You are an expert in %s content creation. Write an engaging %d-second script on the topic: %s", style, seconds, topic)
	user := fmt.Sprintf("Write a detailed script for a %d-second video about '%s' in a %s style. Include staging directions.", seconds, topic, style)
	if audience != "" {
		user += fmt.Sprintf(" The audience is %s.", audience)
	}
	return text.Prompt{
		System:      withLanguage(system, locale),
		User:        user,
		MaxTokens:   1000,
		Temperature: 0.7,
	}
}

func podcastPrompt(topic string, minutes int, includeIntro bool, locale string) text.Prompt {
	p := scriptPrompt(topic, minutes*60, podcastScriptStyle, "", locale)
	if includeIntro {
		p.User += " Start with a short spoken introduction of the show and the topic."
	} else {
		p.User += " Start directly with the topic, without an introduction."
	}
	return p
}

func socialPrompt(platform, topic, tone string, hashtags bool, locale string) text.Prompt {
	hashtagInstruction := "Do not include hashtags."
	if hashtags {
		hashtagInstruction = "Include relevant hashtags."
	}
	return text.Prompt{
		System:      withLanguage(fmt.Sprintf("You are a digital marketing expert specialised in %s. Your tone is %s.", platform, tone), locale),
		User:        fmt.Sprintf("Write a %s post about '%s' with a %s tone. %s Follow %s best practices.", platform, topic, tone, hashtagInstruction, platform),
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

func reportPrompt(topic string, sources []string, format string, charts bool, locale string) text.Prompt {
	sourceList := noDataSources
	if len(sources) > 0 {
		sourceList = strings.Join(sources, ", ")
	}
	user := fmt.Sprintf("Write a detailed report on '%s'. Data sources: %s. Format: %s. Include an introduction, analysis, conclusions and recommendations.", topic, sourceList, format)
	if charts {
		user += " Suggest where charts would help and describe what each should show."
	}
	return text.Prompt{
		System:      withLanguage("You are an expert analyst who writes professional reports.", locale),
		User:        user,
		MaxTokens:   2000,
		Temperature: 0.3,
	}
}

// withLanguage asks for the answer in the locale's language. The default
// locale needs no instruction.
func withLanguage(system, locale string) string {
	if locale == "" || locale == domain.DefaultLocale {
		return system
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return system
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return system
	}
	return fmt.Sprintf("%s Answer in %s.", system, name)
}
