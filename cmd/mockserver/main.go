// Command mockserver mimics the Hugging Face Inference API endpoint for
// manual testing of the proxy without upstream credentials. Query switches
// select the response shape and failure modes:
//
//	?shape=array|object|string  response payload shape (default array)
//	?status=503                 model-loading response
//	?status=429                 rate-limited response
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

const mockReply = "<think>The user greeted me.</think>Hello there, this is a mock completion"

func main() {
	port := flag.String("port", "8001", "Port to run the server on")
	flag.Parse()

	r := gin.Default()

	r.POST("/models/*model", func(c *gin.Context) {
		switch c.Query("status") {
		case "503":
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":          "Model is currently loading",
				"estimated_time": 20.0,
			})
			return
		case "429":
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit reached"})
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !gjson.GetBytes(body, "inputs").Exists() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing inputs"})
			return
		}

		switch c.Query("shape") {
		case "object":
			c.JSON(http.StatusOK, gin.H{"generated_text": mockReply})
		case "string":
			c.JSON(http.StatusOK, mockReply)
		default:
			c.JSON(http.StatusOK, []gin.H{{"generated_text": mockReply}})
		}
	})

	if err := r.Run(":" + *port); err != nil {
		log.Fatal(err)
	}
}
