package trips

import "strings"

// French cardinal-number spelling for invoice amounts. Follows pre-1990
// orthography (hyphens below cent, spaces elsewhere), which is what the
// accounting documents have always carried.

var frenchUnits = [...]string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit",
	"neuf", "dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
	"dix-sept", "dix-huit", "dix-neuf",
}

var frenchTens = [...]string{
	"", "dix", "vingt", "trente", "quarante", "cinquante", "soixante",
	"soixante", "quatre-vingt", "quatre-vingt",
}

// frenchBelowHundred spells 0..99, handling the 70s and 90s (base-ten word
// plus a teen remainder) and the "et-un" junction.
func frenchBelowHundred(n int64) string {
	if n < 20 {
		return frenchUnits[n]
	}
	tens := n / 10
	rem := n % 10

	// 70..79 and 90..99 borrow the teens: soixante-douze, quatre-vingt-onze.
	if tens == 7 || tens == 9 {
		word := frenchTens[tens]
		teen := n - (tens-1)*10
		if tens == 7 && teen == 11 {
			return word + " et onze"
		}
		return word + "-" + frenchUnits[teen]
	}

	word := frenchTens[tens]
	switch {
	case rem == 0:
		if tens == 8 {
			return word + "s"
		}
		return word
	case rem == 1 && tens != 8:
		return word + " et un"
	default:
		return word + "-" + frenchUnits[rem]
	}
}

func frenchBelowThousand(n int64) string {
	if n < 100 {
		return frenchBelowHundred(n)
	}
	hundreds := n / 100
	rem := n % 100

	var b strings.Builder
	if hundreds == 1 {
		b.WriteString("cent")
	} else {
		b.WriteString(frenchUnits[hundreds])
		b.WriteString(" cent")
		if rem == 0 {
			b.WriteString("s")
		}
	}
	if rem > 0 {
		b.WriteString(" ")
		b.WriteString(frenchBelowHundred(rem))
	}
	return b.String()
}

// NumberToFrenchWords spells a non-negative integer in French. Supports
// values up to the billions, which covers any invoice total.
func NumberToFrenchWords(n int64) string {
	if n == 0 {
		return frenchUnits[0]
	}
	if n < 0 {
		return "moins " + NumberToFrenchWords(-n)
	}

	type scale struct {
		value    int64
		singular string
		plural   string
	}
	scales := []scale{
		{1_000_000_000, "milliard", "milliards"},
		{1_000_000, "million", "millions"},
	}

	var parts []string
	for _, sc := range scales {
		if n >= sc.value {
			count := n / sc.value
			n %= sc.value
			name := sc.singular
			if count > 1 {
				name = sc.plural
			}
			parts = append(parts, frenchBelowThousand(count)+" "+name)
		}
	}
	if n >= 1000 {
		count := n / 1000
		n %= 1000
		// "mille" is invariant and drops the leading "un"; "cents" and
		// "vingts" lose their plural in front of it.
		if count == 1 {
			parts = append(parts, "mille")
		} else {
			word := frenchBelowThousand(count)
			if strings.HasSuffix(word, "cents") || strings.HasSuffix(word, "vingts") {
				word = word[:len(word)-1]
			}
			parts = append(parts, word+" mille")
		}
	}
	if n > 0 {
		parts = append(parts, frenchBelowThousand(n))
	}
	return strings.Join(parts, " ")
}

// AmountInWords spells a dirham amount: whole dirhams plus centimes when the
// fraction is non-zero.
func AmountInWords(amount float64) string {
	dirhams := int64(amount)
	centimes := int64(amount*100+0.5) - dirhams*100

	unit := "dirhams"
	if dirhams == 1 {
		unit = "dirham"
	}
	words := NumberToFrenchWords(dirhams) + " " + unit
	if centimes > 0 {
		centUnit := "centimes"
		if centimes == 1 {
			centUnit = "centime"
		}
		words += " et " + NumberToFrenchWords(centimes) + " " + centUnit
	}
	return words
}
