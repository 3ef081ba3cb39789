package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"treasurehunt/internal/env"
	"treasurehunt/internal/geofence"
	"treasurehunt/internal/logging"
	"treasurehunt/internal/resources"
	"treasurehunt/internal/storage"
)

func main() {
	publish := flag.Bool("publish", false, "upload the landmarks and the English string table to S3")
	flag.Parse()

	env.LoadEnv()
	log := logging.New(logging.Config{
		Level:  env.GetEnv("LOG_LEVEL", "info"),
		Format: env.GetEnv("LOG_FORMAT", "text"),
	})

	printCatalog(resources.English())

	if !*publish {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	bucketName := env.MustGetEnv("CATALOG_BUCKET_NAME")
	s3Service, err := storage.NewS3Service(log)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := s3Service.CreateBucket(ctx, bucketName, ""); err != nil {
		log.Fatal(err)
	}

	if failed := s3Service.PublishLandmarks(ctx, bucketName, geofence.Landmarks()); failed > 0 {
		log.Fatalf("%d landmarks failed to publish", failed)
	}
	if err := s3Service.PutStrings(ctx, bucketName, "en", resources.English()); err != nil {
		log.Fatal(err)
	}
	log.WithFields(logrus.Fields{"bucket": bucketName, "landmarks": geofence.NumLandmarks}).Info("Catalog published")
}

func printCatalog(res resources.Strings) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tLAT\tLON\tHINT")
	for i, l := range geofence.Landmarks() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.6f\t%.6f\t%s\n", i, l.ID, res.GetString(l.Name), l.LatLong.Lat, l.LatLong.Lon, res.GetString(l.Hint))
	}
	_ = w.Flush()
	fmt.Printf("\nradius: %.1f m, expiration: %d ms\n", geofence.RadiusInMeters, geofence.ExpirationInMilliseconds)
}
