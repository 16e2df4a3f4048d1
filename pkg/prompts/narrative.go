package prompts

// QualityTierUltra は追加の描写を付け加える最上位の品質ティアです。
const QualityTierUltra = "ultra"

var interiorLighting = map[string]string{
	CategoryNight:   "Most windows (about 70-80%) glow with warm interior light; ceiling fixtures and furniture silhouettes are visible behind the glass",
	CategoryEvening: "Roughly half of the windows (about 40-60%) show warm interior lighting contrasting with the cool sky",
	CategoryGolden:  "A few windows (about 10-20%) show soft interior lighting while most glass reflects the low warm sun",
	CategoryDay:     "Interior lights are mostly off; windows reflect the sky with occasional glimpses into interiors (under 10% lit)",
}

const interiorLightingUltra = " Show individual light fixtures, curtains and blinds, and varied color temperatures (2700K-4000K) from room to room."

const (
	rooftopAerial      = "MANDATORY: every flat roof shows realistic rooftop furniture (HVAC units, water tanks, solar panels, parapets, access hatches and drainage details)"
	rooftopAerialUltra = " Add fine rooftop detail: cable trays, vent caps, gravel ballast texture, weathering stains and maintenance walkways."
	rooftopGround      = "Rooflines read as clean silhouettes against the sky; keep parapets, eaves and roof edges crisp"
	rooftopGroundUltra = " Let subtle rooftop equipment peek above the parapets and add fine eave and flashing detail."
)

// InteriorLightingNarrative は時間帯の照明カテゴリから室内照明の描写を返します。
// 夜ほど点灯している窓の割合が高くなります。
func InteriorLightingNarrative(category, tier string) string {
	s, ok := interiorLighting[category]
	if !ok {
		s = interiorLighting[CategoryDay]
	}
	if tier == QualityTierUltra {
		s += interiorLightingUltra
	}
	return s
}

// RooftopNarrative はカメラアングルが空撮かどうかから屋上の描写を返します。
func RooftopNarrative(aerial bool, tier string) string {
	ultra := tier == QualityTierUltra
	if aerial {
		if ultra {
			return rooftopAerial + "." + rooftopAerialUltra
		}
		return rooftopAerial
	}
	if ultra {
		return rooftopGround + "." + rooftopGroundUltra
	}
	return rooftopGround
}
