package normalize

// colorRules maps colour names and size adjectives to short codes. The stage is
// optional; listings that spell the same variant differently ("azul marino" vs
// "navy") only agree once both collapse to the same code. Word boundaries are
// used instead of the space-consuming groups of the other tables so adjacent
// adjectives ("azul grande") are both rewritten.
func colorRules() *RuleSet {
	return NewRuleSet(
		NewRule("blanco", `\b(blanc[oa]|white)\b`, `wht`),
		NewRule("azul-marino", `\b(azul marino|navy)\b`, `nvy`),
		NewRule("azul", `\b(azul|blue)\b`, `blu`),
		NewRule("verde", `\b(verde|green)\b`, `grn`),
		NewRule("amarillo", `\b(amarill[oa]|yellow)\b`, `ylw`),
		NewRule("rosa", `\b(rosa|rosado|pink)\b`, `pnk`),
		NewRule("morado", `\b(morad[oa]|purpura|purple)\b`, `prp`),
		NewRule("naranja", `\b(naranja|anaranjad[oa]|orange)\b`, `org`),
		NewRule("gris", `\b(gris|gray|grey)\b`, `gry`),
		NewRule("cafe", `\b(cafe|marron|brown)\b`, `brn`),
		NewRule("red", `\b(red|rojiz[oa])\b`, `rd`),
		NewRule("black", `\b(black)\b`, `blk`),
		NewRule("dorado", `\b(dorad[oa]|gold)\b`, `gld`),
		NewRule("plateado", `\b(platead[oa]|silver)\b`, `slv`),
		NewRule("grande", `\b(grande|large|big)\b`, `lg`),
		NewRule("mediano", `\b(mediana|mediano|medium)\b`, `md`),
		NewRule("chico", `\b(chic[oa]|pequen[oa]|small|mini)\b`, `sm`),
		NewRule("familiar", `\b(familiar|family)\b`, `fam`),
		NewRule("jumbo", `\b(jumbo|gigante|extra grande)\b`, `xl`),
	)
}
