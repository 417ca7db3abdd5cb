package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
	"github.com/dmitrijs2005/rentable/internal/common"
	sc "github.com/dmitrijs2005/rentable/internal/server/config"
	"github.com/stretchr/testify/require"
)

func newStorageService() *StorageService {
	return NewStorageService(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "avatars",
	})
}

// stubS3 replaces the S3 seams for one test. exists drives HeadObject.
func stubS3(t *testing.T, exists bool, headErr error) (put **s3.PutObjectInput) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origHead := headObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		headObject = origHead
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		require.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		require.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
		require.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(*s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	var captured *s3.PutObjectInput
	presignPutObject = func(_ *s3.PresignClient, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		captured = in
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/avatars/" + *in.Key + "?X-Amz-Signature=sig"}, nil
	}
	headObject = func(*s3.Client, context.Context, *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		if headErr != nil {
			return nil, headErr
		}
		if exists {
			return &s3.HeadObjectOutput{}, nil
		}
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &captured
}

func TestCreateUploadURL_Upsert(t *testing.T) {
	put := stubS3(t, true, nil)
	svc := newStorageService()

	url, err := svc.CreateUploadURL(context.Background(), "u1", "avatars", "u1/profile.jpg", "image/jpeg", true)
	require.NoError(t, err)
	require.Contains(t, url, "avatars/u1/profile.jpg")
	require.Equal(t, "u1/profile.jpg", *(*put).Key)
	require.Equal(t, "image/jpeg", *(*put).ContentType)
}

func TestCreateUploadURL_NoUpsert(t *testing.T) {
	stubS3(t, false, nil)
	url, err := newStorageService().CreateUploadURL(context.Background(), "u1", "avatars", "/u1/a.jpg", "", false)
	require.NoError(t, err)
	require.NotEmpty(t, url)

	stubS3(t, true, nil)
	_, err = newStorageService().CreateUploadURL(context.Background(), "u1", "avatars", "u1/a.jpg", "", false)
	require.ErrorIs(t, err, ErrObjectExists)
	require.ErrorIs(t, err, common.ErrorConflict)

	stubS3(t, false, errors.New("dial tcp: refused"))
	_, err = newStorageService().CreateUploadURL(context.Background(), "u1", "avatars", "u1/a.jpg", "", false)
	require.ErrorContains(t, err, "error checking object")
}

func TestCreateUploadURL_Rejections(t *testing.T) {
	stubS3(t, false, nil)
	svc := newStorageService()
	ctx := context.Background()

	_, err := svc.CreateUploadURL(ctx, "u1", "other", "u1/profile.jpg", "", true)
	require.ErrorIs(t, err, ErrUnknownBucket)

	for _, path := range []string{"u2/profile.jpg", "u1", "u1/../u2/profile.jpg", "profile.jpg"} {
		_, err = svc.CreateUploadURL(ctx, "u1", "avatars", path, "", true)
		require.ErrorIs(t, err, common.ErrorForbidden, path)
	}

	_, err = svc.CreateUploadURL(ctx, "", "avatars", "/profile.jpg", "", true)
	require.ErrorIs(t, err, common.ErrorForbidden)
}

func TestCreateUploadURL_ClientErrors(t *testing.T) {
	stubS3(t, false, nil)
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err := newStorageService().CreateUploadURL(context.Background(), "u1", "avatars", "u1/p.jpg", "", true)
	require.ErrorContains(t, err, "load-fail")

	stubS3(t, false, nil)
	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-fail")
	}
	_, err = newStorageService().CreateUploadURL(context.Background(), "u1", "avatars", "u1/p.jpg", "", true)
	require.ErrorContains(t, err, "presign-fail")
}
