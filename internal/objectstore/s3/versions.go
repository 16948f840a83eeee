package s3

import (
	"context"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
)

const maxKeysPerPage = 1000

// marker packs the two cursor fields list-object-versions needs
// (key marker and version-id marker) into the single opaque string
// objectstore.Page/VersionPager pass around.
func encodeMarker(keyMarker, versionIDMarker string) string {
	if keyMarker == "" && versionIDMarker == "" {
		return ""
	}
	return keyMarker + "\x00" + versionIDMarker
}

func decodeMarker(marker string) (keyMarker, versionIDMarker string) {
	if marker == "" {
		return "", ""
	}
	parts := strings.SplitN(marker, "\x00", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// ListVersionsPage issues one paged ListObjectVersions call. No
// delimiter is used, matching the "flat" listing spec.md requires so a
// prefix's whole key space (not just its immediate children) is
// covered by one prefix's worth of listing.
func (s *Store) ListVersionsPage(ctx context.Context, bucket, prefix, marker string) (objectstore.Page, error) {
	s.sem.GetToken()
	defer s.sem.ReleaseToken()

	keyMarker, versionIDMarker := decodeMarker(marker)

	debug.Log("ListObjectVersions(%v, %v, keyMarker=%v, versionMarker=%v)", bucket, prefix, keyMarker, versionIDMarker)

	core := minio.Core{Client: s.client}
	result, err := core.ListObjectVersions(bucket, prefix, keyMarker, versionIDMarker, "", maxKeysPerPage)
	if err != nil {
		return objectstore.Page{}, classify(err)
	}

	page := objectstore.Page{
		Truncated: result.IsTruncated,
	}
	if page.Truncated {
		page.NextMarker = encodeMarker(result.NextKeyMarker, result.NextVersionIDMarker)
	}

	for _, v := range result.Versions {
		page.Summaries = append(page.Summaries, objectstore.VersionRecord{
			Key:          v.Key,
			BucketName:   bucket,
			VersionID:    v.VersionID,
			LastModified: v.LastModified,
			HasModified:  !v.LastModified.IsZero(),
			DeleteMarker: v.IsDeleteMarker,
		})
	}

	return page, nil
}

// Copy performs a server-side copy of a specific version id.
func (s *Store) Copy(ctx context.Context, srcBucket, srcKey, srcVersionID, destBucket, destKey string) error {
	s.sem.GetToken()
	defer s.sem.ReleaseToken()

	debug.Log("CopyObject %v/%v@%v -> %v/%v", srcBucket, srcKey, srcVersionID, destBucket, destKey)

	src := minio.CopySrcOptions{
		Bucket:    srcBucket,
		Object:    srcKey,
		VersionID: srcVersionID,
	}
	dst := minio.CopyDestOptions{
		Bucket: destBucket,
		Object: destKey,
	}

	_, err := s.client.CopyObject(ctx, dst, src)
	return classify(err)
}

// Delete removes destKey. An already-absent key is treated as success.
func (s *Store) Delete(ctx context.Context, destBucket, destKey string) error {
	s.sem.GetToken()
	defer s.sem.ReleaseToken()

	debug.Log("RemoveObject %v/%v", destBucket, destKey)

	err := s.client.RemoveObject(ctx, destBucket, destKey, minio.RemoveObjectOptions{})
	if isNotFound(err) {
		return nil
	}
	return classify(err)
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && (resp.Code == "NoSuchKey" || resp.Code == "NoSuchVersion")
}
