package expense

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Server", func() {
	var (
		store       *mockStore
		engine      *mockEngine
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		store = newMockStore()
		engine = newMockEngine()
		store.objects["uploads/receipts/receipt.jpg"] = []byte("image bytes")
		service = NewServiceWithDeps(store, engine, &fixedTimeSource{now: time.Date(2024, 6, 24, 12, 0, 0, 0, time.UTC)})
		auth = BasicAuth{}
		server = NewServerWithMux(service, "uploads", auth, http.NewServeMux())
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	postEvent := func(body string) *http.Response {
		resp, err := http.Post(ghttpServer.URL()+"/api/events", "application/json", strings.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decodeBody := func(resp *http.Response) ResponseBody {
		defer resp.Body.Close()
		var body ResponseBody
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		return body
	}

	Describe("handleStatus", func() {
		It("should return status OK", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()
		})

		It("should report the service name", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("receipted"))
		})
	})

	Describe("handleProcessEvent", func() {
		const validEvent = `{"Records": [{"s3": {"bucket": {"name": "uploads"}, "object": {"key": "receipts/receipt.jpg", "size": 11}}}]}`

		When("the event is valid", func() {
			It("should return status OK", func() {
				resp := postEvent(validEvent)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return the successful envelope body", func() {
				body := decodeBody(postEvent(validEvent))
				Expect(body.Success).To(BeTrue())
				Expect(body.Data.Merchant).To(Equal("STARBUCKS COFFEE"))
				Expect(body.File.Key).To(Equal("receipts/receipt.jpg"))
			})

			It("should set Content-Type to application/json", func() {
				resp := postEvent(validEvent)
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})
		})

		When("the extraction fails", func() {
			BeforeEach(func() {
				engine.err = errors.New("engine exploded")
			})

			It("should still return status OK with a failure body", func() {
				resp := postEvent(validEvent)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				body := decodeBody(resp)
				Expect(body.Success).To(BeFalse())
				Expect(body.Error).To(Equal("engine exploded"))
			})
		})

		When("the request body is not JSON", func() {
			It("should return status 500 with a failure body", func() {
				resp := postEvent("not json")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				body := decodeBody(resp)
				Expect(body.Success).To(BeFalse())
			})
		})

		When("the event has no records", func() {
			It("should return status 500", func() {
				resp := postEvent(`{"Records": []}`)
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})
		})
	})

	Describe("handleUploadReceipt", func() {
		uploadFile := func(fieldName, filename string, content []byte) *http.Response {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile(fieldName, filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(content)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())

			resp, err := http.Post(ghttpServer.URL()+"/api/receipts", writer.FormDataContentType(), &buf)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		When("a file is uploaded", func() {
			It("should store it and return the extraction envelope", func() {
				resp := uploadFile("file", "receipt.jpg", []byte("uploaded bytes"))
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				body := decodeBody(resp)
				Expect(body.Success).To(BeTrue())
				Expect(body.File.Key).To(HavePrefix("receipts/"))
				Expect(engine.lastData).To(Equal([]byte("uploaded bytes")))
			})
		})

		When("no file field is provided", func() {
			It("should return status Bad Request", func() {
				resp := uploadFile("wrong-field", "receipt.jpg", []byte("bytes"))
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})
	})

	Describe("handlePresignUpload", func() {
		When("a filename is given", func() {
			It("should return the URL and key", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/presign?filename=receipt.jpg")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var result map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
				Expect(result["bucket"]).To(Equal("uploads"))
				Expect(result["key"]).To(HavePrefix("receipts/"))
				Expect(result["url"]).NotTo(BeEmpty())
			})
		})

		When("the filename is missing", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/presign")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})
	})

	Describe("handleDeleteObject", func() {
		When("the object exists", func() {
			It("should return status No Content", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/receipts/receipt.jpg", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
				resp.Body.Close()
				Expect(store.objects).NotTo(HaveKey("uploads/receipts/receipt.jpg"))
			})
		})

		When("the delete fails", func() {
			BeforeEach(func() {
				store.deleteErr = errors.New("delete failed")
			})

			It("should return status Internal Server Error", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/receipts/receipt.jpg", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			server = NewServerWithMux(service, "uploads", auth, http.NewServeMux())
			setupServer()
		})

		It("should reject requests without credentials", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/events", "application/json", strings.NewReader("{}"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			resp.Body.Close()
		})

		It("should accept requests with valid credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts/presign?filename=a.jpg", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")))
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()
		})

		It("should reject requests with wrong credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts/presign?filename=a.jpg", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:wrong")))
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			resp.Body.Close()
		})
	})
})
