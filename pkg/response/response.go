// Package response 提供统一的 HTTP 响应封装
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body 统一响应结构
type Body struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: "OK", Message: "success", Data: data})
}

// Created 返回创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Code: "CREATED", Message: "created", Data: data})
}

// ErrorWithStatus 返回带状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message string, code string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, Body{Code: code, Message: message})
}
