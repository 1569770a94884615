package grammars

import "github.com/kitt-ai/parsetron/grammar"

// ColoredLight compiles the colored-light command grammar: on/off
// switching, light names with quantifiers, blink/flash actions with
// counts, brightness and saturation adjustment, colors, and themes.
// One utterance may carry several commands.
func ColoredLight() (*grammar.Grammar, error) {
	b := grammar.NewBuilder("ColoredLight")

	on := b.Define("on", grammar.StringSet("turn on", "on", "hit"))
	off := b.Define("off", grammar.StringSet("turn off", "off", "kill"))
	onOff := b.Define("on_off", grammar.Or(on, off))

	generalName := b.Define("general_name",
		grammar.StringSet("lights", "light", "lamp", "bulb", "lightbulb"))
	specificName := b.Define("specific_name",
		grammar.StringSet("top", "bottom", "middle", "kitchen", "living room",
			"bedroom", "bedside"))
	quantifier := b.Define("quantifier", grammar.StringSet("both", "all"))
	lightName := b.Define("light_name", grammar.And(
		grammar.Optional(quantifier),
		grammar.ZeroOrMore(specificName),
		grammar.Optional(generalName),
	))

	blink := b.Define("blink", grammar.Optional(grammar.StringSet("blink", "flash")))

	brightnessMore := b.Define("brightness_more",
		grammar.StringSet("bright", "brighter", "strong", "stronger", "too dark"))
	brightnessLess := b.Define("brightness_less",
		grammar.StringSet("less bright", "soft", "softer", "dim", "dimmer",
			"too bright"))
	brightness := b.Define("brightness", grammar.Or(brightnessMore, brightnessLess))

	saturationMore := b.Define("saturation_more",
		grammar.StringSet("deeper", "darker", "warmer", "too cold"))
	saturationLess := b.Define("saturation_less",
		grammar.StringSet("lighter", "shallower", "colder", "too warm"))
	saturation := b.Define("saturation", grammar.Or(saturationLess, saturationMore))

	color := b.Define("color", ColorElement())
	times := TimesElement(b)

	theme := b.Define("theme",
		grammar.StringSet("christmas", "xmas", "halloween", "romantic",
			"valentine", "valentine's", "reading", "beach", "sunrise", "sunset"))

	oneParse := b.Define("one_parse", grammar.Or(
		onOff,
		grammar.And(lightName, onOff),
		grammar.And(onOff, lightName),
		grammar.And(lightName, grammar.Optional(color), grammar.Optional(times)),
		grammar.And(lightName, grammar.Optional(times), grammar.Optional(color)),
		grammar.And(lightName, color),
		grammar.And(lightName, brightness),
		grammar.And(brightness, lightName),
		grammar.And(lightName, saturation),
		grammar.And(saturation, lightName),
		theme,
	))

	b.Goal(grammar.Or(
		grammar.OneOrMore(oneParse),
		grammar.And(blink, grammar.OneOrMore(oneParse)),
	))
	return b.Build()
}

// ColoredLightSentences is the example corpus for the colored-light
// grammar: inputs paired with whether they should parse.
var ColoredLightSentences = []struct {
	Parses bool
	Input  string
}{
	{true, "blink top lights"},
	{true, "flash both top and bottom light with red color and middle light with green and bottom with purple"},
	{true, "flash both top and bottom light with red color and middle light with green"},
	{true, "flash both"},
	{true, "blink top lights twice"},
	{true, "I want to blink top lights"},
	{true, "on top"},
	{true, "have top red"},
	{true, "change top to red and bottom to yellow"},
	{true, "lights please on"},
	{true, "flash middle and top light"},
	{true, "change my top light to red and middle to yellow then bottom blue"},
	{true, "turn on lights please"},
	{true, "I want to turn off the top light please"},
	{true, "I want to turn off the lights please"},
	{true, "change top lights to red"},
	{true, "kill top lights for me"},
	{true, "turn lights on"},
	{true, "blink top"},
	{true, "flash middle light twice with red and top once"},
	{true, "flash middle light twice red top once"},
	{true, "give me something romantic"},
	{true, "my top light is too dark"},
	{true, "my top and bottom lights can be warmer"},
	{false, "I want to turn"},
}
