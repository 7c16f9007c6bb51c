package normalize

import "strings"

// abbreviationRules singularizes plurals, drops category noise, shortens common
// descriptors and collapses multi-word brands into single tokens. Blocks guarded
// by a brand name only fire for listings of that brand.
func abbreviationRules() *RuleSet {
	return NewRuleSet(
		NewRule("plural", `([aeioumn])s($|\s)`, `${1}${2}`),
		NewRule("country", `(mexico)`, ``),

		// descriptors
		NewRule("suero-rehidratante", `(\s|^)(suero rehidratante)(\s|$)`, `${1}${3}`),
		NewRule("suero", `(\s|^)(suero)(\s|$)`, `${1}${3}`),
		NewRule("hidratante", `(\s|^)(hidratante)(\s|$)`, `${1}${3}`),
		NewRule("deslactosada", `(\s|^)(deslactosada)(\s|$)`, `${1}delac${3}`),
		NewRule("adulto", `(\s|^)(adulto)(\s|$)`, `${1}adlt${3}`),
		NewRule("energy", `(\s|^)(energ[a-z]+)(\s|$)`, `${1}${3}`),
		NewRule("cigarro", `(\s|^)(cigarro[s]*|cig)(\s|$)`, `${1}${3}`),
		NewRule("tequila", `(\s|^)tequila(\s|$)`, `${1}teq${2}`),
		NewRule("whiskey", `(\s|^)whiskey(\s|$)`, `${1}whisky${2}`),
		NewRule("brandy", `(\s|^)brandy(\s|$)`, `${1}brdy${2}`),
		NewRule("aceite", `(\s|^)aceite(\s|$)`, `${1}ace${2}`),
		NewRule("ace-soya", `(\s|^)ace soya(\s|$)`, `${1}ace${2}`),
		NewRule("promo", `(\s|^)promo(\s|$)`, `${1}${2}`),
		NewRule("fresh", `(\s|^)fresh(\s|$)`, `${1}fsh${2}`),
		NewRule("tradicional", `(\s|^)tradicional(\s|$)`, `${1}trad${2}`),
		NewRule("estandar", `(\s|^)estandar|standard(\s|$)`, `${1}esd${2}`),
		NewRule("original", `(\s|^)original(\s|$)`, `${1}${2}`),
		NewRule("papel-higienico", `(\s|^)papel higienico(\s|$)`, `${1}${2}`),
		NewRule("rojo", `(\s|^)roj[a|o](\s|$)`, `${1}red${2}`),
		NewRule("golden", `(\s|^)golden(\s|$)`, `${1}gold${2}`),
		NewRule("negro", `(\s|^)negr[a|o](\s|$)`, `${1}black${2}`),
		NewRule("reposado", `(\s|^)reposado(\s|$)`, `${1}rep${2}`),
		NewRule("especial", `(\s|^)especial(\s|$)`, `${1}esp${2}`),
		NewRule("edicion", `(\s|^)edicion(\s|$)`, `${1}ed${2}`),
		NewRule("anos", `(\s|^)(\d*) ano(\s|$)`, `${1}${2}${2}ano${3}`),
		NewRule("cristalino", `(\s|^)cristalino(\s|$)`, `${1}cristal${2}`),
		NewRule("pocket", `(\s|^)pocket(\s|$)`, `${1}${2}`),
		NewRule("licor", `(\s|^)(licor|destilado)(\sagave)*(\s|$)`, `${1}${4}`),
		NewRule("alimento", `(\s|^)(alim[\.]*)(\s|$)`, `${1}alimento${3}`),

		// category words that carry no brand information
		NewRule("modelo-suffix", `modelo$`, ``),
		NewRule("promo-suffix", `([\s]*)promo(\s|$)`, `${1}${2}`),
		NewRule("pouch", `([\s]*)pouch[e]?(\s|$)`, `${1}pch${2}`),
		NewRule("jugo", `([\s]*)jugo(\s|$)`, `${1}${2}`),
		NewRule("promocion", `([\s]*)promocion(\s|$)`, `${1}${2}`),
		NewRule("sopa-instantanea", `(\s|^)sopa (instantanea)`, `${1}sopa`),
		NewRule("sopa-ramen", `(\s|^)sopa (ramen)`, `${1}sopa`),
		NewRule("habanero", `(\s|^)(chile)* habanero(\s|$)`, `${1}habanero${3}`),
		NewRule("piquin", `(\s|^)(chile)* piquin(\s|$)`, `${1}piquin${3}`),
		NewRule("verde-valle", `(\s|^)(quereta[a-z]+ )?verde valle( quereta[a-z]+)?(\s|$)`, `${1}verdevalle${4}`),
		NewRule("agua-natural", `(\s|^)agua natural(\s|$)`, `${1}${2}`),
		NewRule("refresco", `(\s|^)refresco(\s|$)`, `${1}${2}`),
		NewRule("producto-lacteo", `(\s|^)producto lacteo(\s|$)`, `${1}leche${2}`),

		// maruchan: the bare brand implies the instant soup it is sold as
		NewRule("maruchan", `maruchan`, `sopa maruchan ramen instantanea 64g`).When("maruchan"),
		NewRule("maruchan-spicy", `picante|chile`, `piquin`).When("maruchan"),
		NewRule("maruchan-carne", `carne re`, `re`).When("maruchan"),
		NewRule("maruchan-camaron", `camaron?\s*piquin`, `camaron piquin`).When("maruchan"),

		// skyy flavours
		NewRule("skyy-noise", `(\s|^)mezcla|vodka|blue|original(\s|$)`, `${1}${2}`).When("skyy"),
		NewRule("skyy", `(\s|^)skyy(\s|$)`, `${1}vodkaskyyblue${2}`).When("skyy"),
		NewRule("skyy-appletini", `appletini(:?\smanzana)?(:?\sverde)?`, `ap`).When("skyy"),
		NewRule("skyy-275", `275(\s|$)`, ` 275ml${1}`).When("skyy"),
		NewRule("skyy-cosmo", `cosmo(:?\sarandano)?`, `cs`).When("skyy"),
		NewRule("skyy-citrus", `citru`, ``).When("skyy"),

		// brand homologation
		NewRule("camaron-habanero", `camaron?\s*habanero`, `camaron piquin`),
		NewRule("rb", `(\s|^)rb(\s|$)`, `${1}redbull${2}`),
		NewRule("red-bull", `(\s|^)red bull(\s|$)`, `${1}redbull${2}`),
		NewRule("vive100", `(\s|^)vive\s?100[pz]*(\s|$)`, `${1}vive100${2}`),
		NewRule("loltun", `(\s|^)lol tun(\s|$)`, `${1}loltun${2}`),
		NewRule("vogue", `(\s|^)vogue 600hoja(\s|$)`, `${1}vogue 600 hoja${2}`),
		NewRule("don-pedro", `(\s|^)don pedro(\s|$)`, `${1}donpedro${2}`),
		NewRule("domecq-don-pedro", `(\s|^)(bry\s)?(domecq)?\sdonpedro(\s|$)`, `${1}${2}donpedro${4}`),
		NewRule("bacardi", `(\s|^)bacardi carta blanca(\s|$)`, `${1}bacardi blanco${2}`),
		NewRule("azteca-oro", `(\s|^)(bry )*azteca oro(\s|$)`, `${1}aztecaoro${3}`),
		NewRule("passport", `passport scot[c]?h`, `passport`),
		NewRule("sauza-hacienda", `(\s|^)sauza hacienda(\s|$)`, `${1}sauzahacienda${2}`),
		NewRule("campo-azul", `(\s|^)campo azul(\s|$)`, `${1}campoazul${2}`),
		NewRule("johnnie", `(\s|^)johnne(\s|$)`, `${1}johnnie${2}`),
		NewRule("buchanan", `(\s|^)buchana(\s|$)`, `${1}buchanan${2}`),
		NewRule("cava-de-oro", `(\s|^)cava de oro(\s|$)`, `${1}cavadeoro${2}`),
		NewRule("don-julio", `(\s|^)don julio(\s|$)`, `${1}donjulio${2}`),
		NewRule("rancho-escondido", `(\s|^)rancho escondido(\s|$)`, `${1}ranchoescondido${2}`),
		NewRule("jose-cuervo", `(\s|^)jose cuervo(\s|$)`, `${1}cuervo${2}`),
		NewRule("gran-centenario", `(\s|^)gran centenar[i]*o(\s|$)`, `${1}grancentenario${2}`),
		NewRule("cuervo-1800", `(\s|^)teq 1800(\s|$)`, `${1}cuervo 1800${2}`),
		NewRule("compadre", `(\s|^)(teq|destilado|licor)\scompadre(\s|$)`, `${1}compadre${3}`),
		NewRule("nestle-pureza-vital", `(\s|^)nestle pureza vital(\s|$)`, `${1}npv${2}`),
		NewRule("nestle-pv", `(\s|^)nestle pv(\s|$)`, `${1}npv${2}`),
		NewRule("lechera", `(\s|^)lechera(\s|$)`, `${1}lechera nestle condensada${2}`),
		NewRule("pepsi-cola", `(\s|^)pepsi cola(\s|$)`, `${1}pepsi${2}`),
		NewRule("vitaloe", `(\s|^)vitaloe original(\s|$)`, `${1}vitaloe${2}`),
		NewRule("vel-rosita", `(\s|^)(vel rosita)(\s|$)`, `${1}velrosita${3}`),
		NewRule("caribe-cooler", `(\s|^)caribe cooler(\s|$)`, `${1}caribecooler${2}`),
		NewRule("santa", `(\s|^)(sta[\.]*)(\s|$)`, `${1}santa${3}`),
		NewRule("santa-maria", `(\s|^)(agua )*(natural )*(santa maria)(\s|$)`, `${1}santamaria${5}`),
		NewRule("san-pellegrino", `(\s|^)(agua )*(natural )*(san pellegrino)(\s|$)`, `${1}san pellegrino${5}`),
	)
}

// weightedBrands are canonical brand tokens whose agreement should dominate the
// character alignment. Each is repeated according to its length.
var weightedBrands = []string{
	"caribecooler", "velrosita", "lala", "grancentenario",
	"mezcalito", "alpura", "campoazul", "cabrito", "aztecaoro", "bacardi",
	"jimador", "donjulio", "npv", "pepse", "vitaloe", "vodkaskyyblue",
	"smirnoff", "cuervo", "jumex", "presidente", "sauzahacienda", "boing",
	"redbull", "santamaria", "electrolit", "loltun",
}

// brandRepeat returns how many times a brand token is repeated: short brand
// names are repeated more so that all weighted brands carry similar weight.
func brandRepeat(brand string) int {
	switch n := len(brand); {
	case n <= 5:
		return 4
	case n <= 8:
		return 3
	default:
		return 2
	}
}

// brandWeights maps each weighted brand to its expanded token. The expansion is
// a single concatenated token, so it lengthens the character alignment without
// changing token-set cardinality.
func brandWeights(brands []string) map[string]string {
	out := make(map[string]string, len(brands))
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		out[b] = strings.Repeat(b, brandRepeat(b))
	}
	return out
}
