// Command main fills the configured store with a demo community.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"hearth/internal/bootstrap"
	"hearth/internal/config"
	"hearth/internal/seed"
)

func main() {
	preset := flag.String("preset", "", "Seed preset: tiny, default or busy")
	members := flag.Int("members", 0, "Override the number of members")
	topics := flag.Int("topics", 0, "Override the number of forum topics")
	clean := flag.Bool("clean", true, "Remove existing community data first")
	randSeed := flag.Int64("seed", 0, "Faker seed; 0 picks a random one")
	flag.Parse()

	opts, err := seed.Preset(*preset)
	if err != nil {
		log.Fatalf("Invalid preset: %v", err)
	}
	if *members > 0 {
		opts.Members = *members
	}
	if *topics > 0 {
		opts.Topics = *topics
	}
	opts.Clean = *clean

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if ids := cfg.Moderators(); len(ids) > 0 {
		opts.ModeratorID = ids[0]
	}

	rt, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Printf("Runtime close error: %v", err)
		}
	}()

	log.Printf("Seeding %s store: %d members, %d topics, clean=%v", cfg.StoreDriver, opts.Members, opts.Topics, opts.Clean)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := seed.NewSeeder(rt.Store, rt.Scanner, *randSeed).Run(ctx, opts)
	if err != nil {
		cancel()
		_ = rt.Close()
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d members, %d groups, %d topics, %d templates, %d events, %d challenges, %d mentorships",
		len(res.MemberIDs), len(res.GroupIDs), len(res.TopicIDs), len(res.TemplateIDs),
		len(res.EventIDs), len(res.ChallengeIDs), len(res.PairingIDs))
	log.Printf("Moderator account: %s", opts.ModeratorID)
}
