package library

import "github.com/cantor-app/cantor/internal/hymn"

// SeedIfEmpty loads a handful of public-domain hymns and a default
// service on first run, so the console is usable out of the box.
func (s *Store) SeedIfEmpty() error {
	hymns, err := s.ListHymns()
	if err != nil {
		return err
	}
	if len(hymns) > 0 {
		return nil
	}

	seed := []hymn.Hymn{
		{
			ID:    "amazing-grace",
			Title: "Amazing Grace",
			Blocks: []hymn.Block{
				{Lines: []string{
					"Amazing grace! how sweet the sound,",
					"That saved a wretch like me!",
					"I once was lost, but now am found,",
					"Was blind, but now I see.",
				}},
				{Lines: []string{
					"'Twas grace that taught my heart to fear,",
					"And grace my fears relieved;",
					"How precious did that grace appear",
					"The hour I first believed!",
				}},
				{Lines: []string{
					"Through many dangers, toils and snares,",
					"I have already come;",
					"'Tis grace hath brought me safe thus far,",
					"And grace will lead me home.",
				}},
			},
		},
		{
			ID:    "to-god-be-the-glory",
			Title: "To God Be the Glory",
			Blocks: []hymn.Block{
				{Lines: []string{
					"To God be the glory, great things He hath done,",
					"So loved He the world that He gave us His Son,",
				}},
				{Label: "Chorus", Lines: []string{
					"Praise the Lord, praise the Lord,",
					"Let the earth hear His voice!",
				}},
				{Lines: []string{
					"O perfect redemption, the purchase of blood,",
					"To every believer the promise of God;",
				}},
				{Lines: []string{
					"Great things He hath taught us, great things He hath done,",
					"And great our rejoicing through Jesus the Son;",
				}},
			},
		},
		{
			ID:    "what-a-friend",
			Title: "What a Friend We Have in Jesus",
			Blocks: []hymn.Block{
				{Lines: []string{
					"What a friend we have in Jesus,",
					"All our sins and griefs to bear!",
				}},
				{Lines: []string{
					"Have we trials and temptations?",
					"Is there trouble anywhere?",
				}},
			},
		},
	}

	for _, h := range seed {
		if err := s.SaveHymn(h); err != nil {
			return err
		}
	}

	if err := s.CreateService("Sunday Service"); err != nil {
		return err
	}
	if err := s.SetActiveService("Sunday Service"); err != nil {
		return err
	}
	for _, h := range seed {
		if err := s.AppendToActiveService(h.ID); err != nil {
			return err
		}
	}
	return nil
}
