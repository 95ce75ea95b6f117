package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"

	"openfeed/pkg/common"
	"openfeed/pkg/post"
	"openfeed/pkg/postcache"
	"openfeed/pkg/profile"
)

var f = faker.New()

type IProfileRepo interface {
	Add(*profile.Profile) (string, error)
	GetAll() ([]*profile.Profile, error)
}

func fakeAddress() string {
	const hexRunes = "0123456789abcdef"
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexRunes[rand.Intn(len(hexRunes))]
	}
	return "0x" + string(b)
}

func createAuthors(profileRepo IProfileRepo) {
	// Profile for experiments (not random)
	_, err := profileRepo.Add(&profile.Profile{
		Address: "0x0000000000000000000000000000000000000001",
		Handle:  "pike",
	})
	if err != nil {
		log.Fatalln("seed: can't create default profile:", err)
	}
	for i := 1; i <= 5; i++ {
		genProfile(profileRepo)
	}
}

func genProfile(profileRepo IProfileRepo) {
	p := &profile.Profile{
		Address:     fakeAddress(),
		Handle:      strings.ToLower(f.Person().FirstName()),
		DisplayName: f.Person().Name(),
	}
	if _, err := profileRepo.Add(p); err != nil {
		log.Fatalln("seed: can't create profile:", err)
	}
}

func seed(profileRepo IProfileRepo, cache *postcache.Repo, appAddress string) {
	createAuthors(profileRepo)

	authors, err := profileRepo.GetAll()
	if err != nil {
		log.Fatalln("seed: can't get seeded profiles:", err)
	}

	ctx := context.Background()
	for i := 0; i < 30; i++ {
		author := authors[rand.Intn(len(authors))]
		title := f.Lorem().Sentence(5)
		p := &post.Post{
			Id:      post.Id(common.RandStringRunes(12)),
			Slug:    slugify(title),
			Author:  post.Author{Address: author.Address, Username: author.Handle},
			App:     appAddress,
			Content: f.Lorem().Paragraph(3),
			Tags:    []string{f.Lorem().Word(), f.Lorem().Word()},
			Stats: post.Stats{
				Upvotes:   rand.Intn(100),
				Comments:  rand.Intn(20),
				Bookmarks: rand.Intn(30),
			},
			Created: time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
		}
		if err := cache.Upsert(ctx, p); err != nil {
			log.Fatalln("seed: can't cache post:", err)
		}
	}
	fmt.Println("seed: done")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSuffix(s, "."))
	return strings.ReplaceAll(s, " ", "-")
}
