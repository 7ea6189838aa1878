package datasets

import (
	"math/rand"

	"github.com/basalamahsyarief/pykeen/internal/triples"
)

const toySeed = 1

// Toy returns a small deterministic synthetic knowledge graph of people,
// cities, companies and countries, around 130 triples over six relations.
// It exists so that tests and quickstarts can run a full train/evaluate
// cycle without any dataset files.  Every call returns identical splits.
func Toy() *Dataset {
	people := []string{
		"ada", "boris", "carline", "dmitri", "elif", "farid", "grete",
		"hiroshi", "ines", "jonas", "katya", "liam", "mara", "nadia",
	}
	cities := []string{
		"amsterdam", "bogota", "cairo", "dresden", "edinburgh", "fukuoka", "geneva",
	}
	companies := []string{
		"acme", "borealis", "cobalt", "dynamo", "everest", "fjord", "granite",
	}
	countries := []string{
		"netherlands", "colombia", "egypt", "germany",
	}

	rng := rand.New(rand.NewSource(toySeed))
	var labeled [][3]string
	add := func(h, r, t string) {
		labeled = append(labeled, [3]string{h, r, t})
	}

	for _, city := range cities {
		add(city, "located_in", countries[rng.Intn(len(countries))])
	}
	for _, company := range companies {
		add(company, "headquartered_in", cities[rng.Intn(len(cities))])
	}
	for i, person := range people {
		add(person, "lives_in", cities[rng.Intn(len(cities))])
		add(person, "born_in", cities[rng.Intn(len(cities))])
		add(person, "works_for", companies[i%len(companies)])
		for _, j := range rng.Perm(len(people))[:4] {
			if people[j] == person {
				continue
			}
			add(person, "knows", people[j])
		}
	}

	full := triples.FromLabeled(labeled)
	splits, err := full.Split(toySeed, 0.8, 0.1)
	if err != nil {
		panic(err)
	}
	return &Dataset{
		Name:       "toy",
		Train:      splits[0],
		Validation: splits[1],
		Test:       splits[2],
	}
}
