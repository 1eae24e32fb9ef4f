package empire

var genrePrompts = map[string][]string{
	"Lo-Fi Hip Hop": {
		"Chill lo-fi hip hop with vinyl crackle and jazz piano samples for studying",
		"Mellow lo-fi beats with rain sounds and nostalgic atmosphere",
		"Late night lo-fi vibes with soft drums and dreamy pads",
		"Study lo-fi beats with coffee shop ambiance and warm tones",
	},
	"Trap": {
		"Dark trap beat with heavy 808s and menacing melody, 140 BPM",
		"Melodic trap instrumental with modern drums and catchy hooks",
		"Hard trap beat with aggressive percussion and street atmosphere",
		"Emotional trap beat with piano melodies and deep 808s",
	},
	"Chill Pop": {
		"Upbeat chill pop with tropical vibes and summer energy",
		"Dreamy pop beat with ethereal synths and modern production",
		"Feel-good pop instrumental perfect for TikTok content",
		"Indie pop beat with organic elements and catchy melodies",
	},
	"Ambient": {
		"Peaceful ambient soundscape with nature elements and soft pads",
		"Deep meditation music with healing frequencies and drones",
		"Atmospheric ambient track perfect for sleep and relaxation",
		"Cinematic ambient piece with evolving textures and space",
	},
	"Deep House": {
		"Deep house groove with warm bassline and hypnotic rhythm",
		"Progressive house track with building energy and euphoric drops",
		"Underground house beat with classic 909 drums and acid elements",
		"Melodic house instrumental with emotional chord progressions",
	},
}

// moodForHour maps the local hour to a prompt mood tail.
func moodForHour(hour int) string {
	switch {
	case hour >= 6 && hour <= 12:
		return "morning energy, fresh start, optimistic"
	case hour >= 13 && hour <= 18:
		return "afternoon productivity, focus, motivation"
	case hour >= 19 && hour <= 22:
		return "evening relaxation, wind down, chill vibes"
	default:
		return "late night atmosphere, introspective, dreamy"
	}
}

// moodName is the short label used in upload copy.
func moodName(hour int) string {
	switch {
	case hour >= 6 && hour <= 12:
		return "morning"
	case hour >= 13 && hour <= 18:
		return "afternoon"
	case hour >= 19 && hour <= 22:
		return "evening"
	default:
		return "night"
	}
}

// smartPrompt picks a base prompt for the genre and layers on the
// time-of-day mood. Genres without a bank borrow the Lo-Fi prompts.
func (e *Empire) smartPrompt(genre string) string {
	prompts, ok := genrePrompts[genre]
	if !ok {
		prompts = genrePrompts["Lo-Fi Hip Hop"]
	}
	base := prompts[e.randIntn(len(prompts))]
	return base + ", " + moodForHour(e.now().Hour()) + ", professional production quality"
}
