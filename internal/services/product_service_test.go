package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 0}

type fakeS3 struct {
	s3iface.S3API
	puts    []string
	deletes []string
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, aws.StringValue(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(ctx aws.Context, in *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (suite *ServiceTestSuite) upload(name string, content []byte) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", name)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	file, header, err := req.FormFile("image")
	suite.Require().NoError(err)
	return file, header
}

func (suite *ServiceTestSuite) TestOnlyFarmersCreateProducts() {
	product := suite.newProduct(suite.farmer, "Carrots", 0.8, 40)
	suite.Equal(suite.farmer.ID, product.FarmerID)
	suite.True(product.IsActive)

	_, err := suite.products.Create(suite.ctx, suite.buyer, &CreateProductRequest{Name: "Fake", Unit: "kg", Price: 1})
	suite.assertDenied(err)

	_, err = suite.products.Create(suite.ctx, suite.admin, &CreateProductRequest{Name: "Fake", Unit: "kg", Price: 1})
	suite.assertDenied(err)
}

func (suite *ServiceTestSuite) TestProductCategoryMustExist() {
	missing := uuid.New()
	_, err := suite.products.Create(suite.ctx, suite.farmer, &CreateProductRequest{
		Name: "Rice", Unit: "kg", Price: 1, CategoryID: &missing,
	})
	suite.assertViolation(err, apperrors.ViolationMissingReference)
}

func (suite *ServiceTestSuite) TestProductUpdateChecksRanges() {
	product := suite.newProduct(suite.farmer, "Onions", 1.1, 20)

	negative := -1.0
	_, err := suite.products.Update(suite.ctx, suite.farmer, product.ID, &UpdateProductRequest{Price: &negative})
	suite.assertViolation(err, apperrors.ViolationOutOfRange)

	stock := -3
	_, err = suite.products.Update(suite.ctx, suite.farmer, product.ID, &UpdateProductRequest{StockQuantity: &stock})
	suite.assertViolation(err, apperrors.ViolationOutOfRange)

	price := 1.5
	updated, err := suite.products.Update(suite.ctx, suite.farmer, product.ID, &UpdateProductRequest{Price: &price})
	suite.Require().NoError(err)
	suite.Equal(1.5, updated.Price)
}

func (suite *ServiceTestSuite) TestOtherFarmersCannotTouchProduct() {
	product := suite.newProduct(suite.farmer, "Onions", 1.1, 20)
	rival := suite.newAccount(models.RoleFarmer, "rival@example.com")

	price := 0.01
	_, err := suite.products.Update(suite.ctx, rival, product.ID, &UpdateProductRequest{Price: &price})
	suite.assertDenied(err)

	suite.assertDenied(suite.products.Delete(suite.ctx, rival, product.ID))
	suite.assertDenied(suite.products.Delete(suite.ctx, suite.admin, product.ID))
	suite.assertDenied(suite.products.Delete(suite.ctx, suite.farmer, uuid.New()))
}

func (suite *ServiceTestSuite) TestBuyerCatalog() {
	suite.newProduct(suite.farmer, "Apples", 2, 10)
	suite.newProduct(suite.farmer, "Sold out", 2, 0)
	hidden := suite.newProduct(suite.farmer, "Draft", 2, 10)

	inactive := false
	_, err := suite.products.Update(suite.ctx, suite.farmer, hidden.ID, &UpdateProductRequest{IsActive: &inactive})
	suite.Require().NoError(err)

	catalog, err := suite.products.List(suite.ctx, suite.buyer, ProductSearchParams{})
	suite.Require().NoError(err)
	suite.Require().Len(catalog, 1)
	suite.Equal("Apples", catalog[0].Name)

	own, err := suite.products.List(suite.ctx, suite.farmer, ProductSearchParams{FarmerID: &suite.farmer.ID})
	suite.Require().NoError(err)
	suite.Len(own, 3)

	_, err = suite.products.Get(suite.ctx, suite.buyer, hidden.ID)
	suite.assertDenied(err)

	anonymous, err := suite.products.List(suite.ctx, policy.Actor{}, ProductSearchParams{})
	suite.Require().NoError(err)
	suite.Empty(anonymous)
}

func (suite *ServiceTestSuite) TestListLowStock() {
	suite.newProduct(suite.farmer, "Plenty", 1, 100)
	low := suite.newProduct(suite.farmer, "Almost gone", 1, 2)

	rows, err := suite.products.ListLowStock(suite.ctx, suite.farmer)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(low.ID, rows[0].ID)

	rows, err = suite.products.ListLowStock(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Empty(rows)
}

func (suite *ServiceTestSuite) TestDeletingProductDetachesMessages() {
	product := suite.newProduct(suite.farmer, "Honey", 6, 5)
	order := suite.deliveredOrder(product)
	_, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, Rating: 4})
	suite.Require().NoError(err)
	msg, err := suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: suite.farmer.ID, ProductID: &product.ID, Content: "more?"})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.products.Delete(suite.ctx, suite.farmer, product.ID))

	stored, err := suite.repo.Messages().Get(suite.ctx, msg.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.ProductID)

	reviews, err := suite.repo.Reviews().ListByProduct(suite.ctx, product.ID)
	suite.Require().NoError(err)
	suite.Empty(reviews)

	items, err := suite.repo.OrderItems().ListByOrder(suite.ctx, order.ID)
	suite.Require().NoError(err)
	suite.Empty(items)

	// The order survives without its line.
	_, err = suite.repo.Orders().Get(suite.ctx, order.ID)
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestUploadImage() {
	s3 := &fakeS3{}
	products := NewProductService(suite.repo, NewStorageServiceWithClient(s3, suite.cfg))
	product := suite.newProduct(suite.farmer, "Mangoes", 3, 12)

	file, header := suite.upload("mango.png", pngHeader)
	updated, err := products.UploadImage(suite.ctx, suite.farmer, product.ID, file, header)
	suite.Require().NoError(err)
	suite.Require().Len(updated.Images, 1)
	suite.Require().Len(s3.puts, 1)
	suite.Contains(updated.Images[0], "test-bucket")
	suite.Contains(updated.Images[0], s3.puts[0])
}

func (suite *ServiceTestSuite) TestUploadImageRefusedBeforeUpload() {
	s3 := &fakeS3{}
	products := NewProductService(suite.repo, NewStorageServiceWithClient(s3, suite.cfg))
	product := suite.newProduct(suite.farmer, "Mangoes", 3, 12)

	file, header := suite.upload("mango.png", pngHeader)
	_, err := products.UploadImage(suite.ctx, suite.buyer, product.ID, file, header)
	suite.assertDenied(err)
	suite.Empty(s3.puts)

	file, header = suite.upload("notes.png", []byte("plain text, not an image"))
	_, err = products.UploadImage(suite.ctx, suite.farmer, product.ID, file, header)
	suite.ErrorIs(err, apperrors.ErrBadRequest)
	suite.Empty(s3.puts)

	file, header = suite.upload("mango.exe", pngHeader)
	_, err = products.UploadImage(suite.ctx, suite.farmer, product.ID, file, header)
	suite.ErrorIs(err, apperrors.ErrBadRequest)
}

func (suite *ServiceTestSuite) TestCategories() {
	category, err := suite.category.Create(suite.ctx, suite.admin, &CategoryRequest{Name: "Tubers"})
	suite.Require().NoError(err)

	_, err = suite.category.Create(suite.ctx, suite.farmer, &CategoryRequest{Name: "Spices"})
	suite.assertDenied(err)

	_, err = suite.category.Create(suite.ctx, suite.admin, &CategoryRequest{Name: "tubers"})
	suite.assertViolation(err, apperrors.ViolationDuplicate)

	rows, err := suite.category.List(suite.ctx, policy.Actor{})
	suite.Require().NoError(err)
	suite.Len(rows, 1)

	product, err := suite.products.Create(suite.ctx, suite.farmer, &CreateProductRequest{
		Name: "Cassava", Unit: "kg", Price: 0.5, StockQuantity: 9, CategoryID: &category.ID,
	})
	suite.Require().NoError(err)

	suite.assertDenied(suite.category.Delete(suite.ctx, suite.farmer, category.ID))
	suite.Require().NoError(suite.category.Delete(suite.ctx, suite.admin, category.ID))

	stored, err := suite.repo.Products().Get(suite.ctx, product.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.CategoryID)
}
