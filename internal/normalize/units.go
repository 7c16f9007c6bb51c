package normalize

// unitRules homogenizes the many surface forms of counts, volumes and weights
// into short tokens (12pz, 600ml, 1lt, 500g, 2kg, 11oz, twoxone). Several rules
// depend on tokens produced by earlier ones, e.g. "12 x 1000 ml" only becomes
// "12pz 1lt" because the ml merge runs before the 1000ml→1lt and NxM rules.
func unitRules() *RuleSet {
	return NewRuleSet(
		NewRule("piece-synonyms",
			`(\d|\s|^)(p|zk|pieza|pzas|articulo|unidades|rollo|unid|c/u|cajetilla|unidad|und|pza|pzs|pk|botella|bulto|lata|laton|charola)[s|\(s\)]?(\s|$|/)`,
			`${1}pz${3}`),
		NewRule("pack-of-n", `(^| )(pack|paquete|caja) (de|con) ([\d]+)`, `${1}${4}pz`),
		NewRule("cigarettes", `([\d*|\s])cig(\s|$)`, `${1}pz${2}`),
		NewRule("and", `(^| )and( |$)`, `${1}&${2}`),
		NewRule("packaging-noise", `(^| )(etiqueta|label|pet|rep100%|tetra|display)( |$)`, `${1}${3}`),
		NewRule("presentation", `presentacion`, ``),
		NewRule("count", `([\d|\s])ct(\s|$)`, `${1}pz${2}`),
		NewRule("n-pack", `([\d]+)\s(pack)`, `${1}pz`),
		NewRule("containers", `(box|paquete|pack|cja|cj|caja|bolsa|bolsas|vaso)(\s|$)`, ``),
		NewRule("beverage", `(bebida( alcoholica)*)`, ``),
		NewRule("milliliters", `(\s|[\d]+)(mls|mililitros|m)(/|-|\s|$)`, `${1}ml${3}`),
		NewRule("liters", `([\d|\s])(lts|litros|litro|l)(/|-|\s|$)`, `${1}lt${3}`),
		NewRule("ounces", `(onzas|onza|oza|onz)(/|-|\s|$)`, `oz`),
		NewRule("grams", `(\s|[\d]+)(g|gramos|gs|gr|grs|gramo)(/|-|\s|$)`, `${1}g${3}`),
		NewRule("attach-unit", `([\d]+)\s(ml|pz|g|kg|lt|oz)`, `${1}${2}`),
		NewRule("ml-plus-ml", `([\d]+)[\s]+[\+]([\d]+)ml`, `${1}ml ${2}ml`),
		NewRule("two-for-one", `(\s|^)2x1(\s|$)`, `${1}twoxone${2}`),
		NewRule("bare-volume", `([\d]{3,}$)`, `${1}ml`),
		NewRule("liter-from-ml", `(1000ml|\slt)(\s|$)`, ` 1lt${2}`),
		NewRule("case-count", `(6|12|24|36)\s(\d{1,4}[ml|g])`, `${1}pz ${2}`),
		NewRule("n-times", `([\d]+)(/|x| x )`, `${1}pz `),
		NewRule("single-piece", `(\s|1|^)pz(\s|$)`, ` `),
		NewRule("single-letter", `(^| )[a-z]( |$)`, `${1}${2}`),
		NewRule("slash", `/`, ` `),
	)
}

// bucketRules coarsens magnitudes so small cross-source discrepancies vanish:
// the last two digits of 3-digit gram values and the last digit of ml values
// are zeroed (355g → 300g, 75ml → 70ml).
func bucketRules() *RuleSet {
	return NewRuleSet(
		NewRule("grams-hundreds", `(\d)\d{2}(g)`, `${1}00${2}`),
		NewRule("ml-tens", `(\d)\d{1}(ml)`, `${1}0${2}`),
	)
}
